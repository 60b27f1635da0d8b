package footballdata

type transfersResponse struct {
	Transfers []transferResponse `json:"transfers"`
}

type transferResponse struct {
	ID           int            `json:"id"`
	Player       personResponse `json:"player"`
	TransferFrom teamResponse   `json:"transferFrom"`
	TransferTo   teamResponse   `json:"transferTo"`
	Date         string         `json:"date"`
	Fee          *feeResponse   `json:"fee"`
}

type personResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type teamResponse struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type feeResponse struct {
	Value    *float64 `json:"value"`
	Currency string   `json:"currency"`
}
