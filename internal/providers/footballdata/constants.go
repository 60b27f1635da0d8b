package footballdata

import "time"

const (
	providerName       = "footballdata"
	defaultBaseURL     = "https://api.football-data.org/v4"
	defaultHTTPTimeout = 10 * time.Second
	authHeader         = "X-Auth-Token"
	// football-data.org reports seconds until the request counter resets.
	resetHeader = "X-RequestCounter-Reset"
)

// Field names emitted by this source before normalization.
const (
	fieldPlayer   = "player"
	fieldPlayerID = "player_id"
	fieldFrom     = "from_team"
	fieldTo       = "to_team"
	fieldDate     = "date"
	fieldFee      = "fee"
	fieldLeague   = "league"
)
