package footballdata

import (
	"strconv"
	"strings"

	"github.com/GOLDENPLIX/pes-2013-updater/internal/domain/transfers"
	"github.com/GOLDENPLIX/pes-2013-updater/internal/timeutil"
)

var sourceFields = []string{fieldPlayer, fieldFrom, fieldTo, fieldDate, fieldFee, fieldLeague, fieldPlayerID}

func mapTransfer(t transferResponse, league string) transfers.Row {
	row := transfers.Row{
		fieldPlayer: t.Player.Name,
		fieldFrom:   t.TransferFrom.Name,
		fieldTo:     t.TransferTo.Name,
		fieldDate:   timeutil.NormalizeDate(strings.TrimSpace(t.Date)),
		fieldFee:    "",
		fieldLeague: league,
	}
	if t.Fee != nil {
		row[fieldFee] = transfers.FormatFee(t.Fee.Value)
	}
	if t.Player.ID > 0 {
		row[fieldPlayerID] = strconv.Itoa(t.Player.ID)
	} else {
		row[fieldPlayerID] = ""
	}
	return row
}

func mapTransfers(payload transfersResponse, league string) transfers.RecordSet {
	set := transfers.NewRecordSet(sourceFields...)
	for _, t := range payload.Transfers {
		if strings.TrimSpace(t.Player.Name) == "" {
			continue
		}
		set.Append(mapTransfer(t, league))
	}
	return set
}
