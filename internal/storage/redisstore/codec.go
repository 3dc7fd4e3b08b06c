package redisstore

import (
	"encoding/json"

	"github.com/magabrotheeeer/lendlens/internal/models"
)

func decodeRecords(raw []byte) ([]models.Defaulter, error) {
	var records []models.Defaulter
	if err := json.Unmarshal(raw, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func encodeRecords(records []models.Defaulter) ([]byte, error) {
	if records == nil {
		records = []models.Defaulter{}
	}
	return json.Marshal(records)
}
