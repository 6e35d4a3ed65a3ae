package data

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/pkg/errors"
)

// LoadHouses reads a CSV produced by GenerateSyntheticHouses (or any file
// with the same header) back into records.
func LoadHouses(path string) ([]House, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open dataset")
	}
	defer f.Close()

	r := csv.NewReader(f)
	rows, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "read dataset")
	}
	if len(rows) < 2 {
		return nil, errors.Errorf("dataset %s has no data rows", path)
	}

	houses := make([]House, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if len(row) < 10 {
			return nil, errors.Errorf("row %d has %d columns, want 10", i, len(row))
		}
		area, _ := strconv.ParseFloat(row[2], 64)
		bedrooms, _ := strconv.Atoi(row[3])
		bathrooms, _ := strconv.Atoi(row[4])
		age, _ := strconv.ParseFloat(row[5], 64)
		dist, _ := strconv.ParseFloat(row[6], 64)
		garage, _ := strconv.Atoi(row[7])
		renovated, _ := strconv.Atoi(row[8])
		price, _ := strconv.ParseFloat(row[9], 64)
		houses = append(houses, House{
			HouseID:    row[0],
			District:   row[1],
			AreaM2:     area,
			Bedrooms:   bedrooms,
			Bathrooms:  bathrooms,
			AgeYears:   age,
			DistCenter: dist,
			Garage:     garage,
			Renovated:  renovated,
			Price:      price,
		})
	}
	return houses, nil
}
