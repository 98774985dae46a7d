package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/Skotchmaster/fraud_reporting/internal/models"
)

const TransactionsFilename = "my_transactions.csv"

var transactionHeader = []string{
	"transactionId", "transactionTime", "ccNum", "transactionType", "amount",
	"city", "userLat", "userLon", "merchantLat", "merchantLon",
}

func coord(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// WriteTransactions writes one header row and one row per transaction.
func WriteTransactions(w io.Writer, txs []models.Transaction) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(transactionHeader); err != nil {
		return err
	}
	for _, t := range txs {
		row := []string{
			t.TransactionID,
			t.TransactionTime.UTC().Format(time.RFC3339),
			t.CCNum,
			t.TransactionType,
			strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.City,
			coord(t.UserLocation.Lat),
			coord(t.UserLocation.Lon),
			coord(t.MerchantLocation.Lat),
			coord(t.MerchantLocation.Lon),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
