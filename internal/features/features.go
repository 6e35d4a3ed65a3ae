package features

import (
    "housebag/internal/data"
)

var districts = []string{"Centro", "Norte", "Sul", "Leste", "Oeste"}

// Vectorize maps a listing to a flat feature vector plus column names.
// Vector layout is the training schema: the ensemble refuses inputs of a
// different width.
func Vectorize(h data.House) ([]float64, []string) {
    names := []string{}
    vec := []float64{}

    names = append(names, "AreaM2")
    vec = append(vec, h.AreaM2)
    names = append(names, "Bedrooms")
    vec = append(vec, float64(h.Bedrooms))
    names = append(names, "Bathrooms")
    vec = append(vec, float64(h.Bathrooms))
    names = append(names, "AgeYears")
    vec = append(vec, h.AgeYears)
    names = append(names, "DistCenterKm")
    vec = append(vec, h.DistCenter)
    names = append(names, "GarageSpots")
    vec = append(vec, float64(h.Garage))
    names = append(names, "Renovated")
    vec = append(vec, float64(h.Renovated))

    rooms := float64(h.Bedrooms + h.Bathrooms)
    areaPerRoom := h.AreaM2
    if rooms > 0 { areaPerRoom = h.AreaM2 / rooms }
    names = append(names, "AreaPerRoom")
    vec = append(vec, areaPerRoom)

    for _, d := range districts {
        names = append(names, "Dist_"+d)
        if h.District == d {
            vec = append(vec, 1.0)
        } else {
            vec = append(vec, 0.0)
        }
    }

    return vec, names
}

func BuildHouse(
    houseID, district string,
    areaM2 float64,
    bedrooms, bathrooms int,
    ageYears, distCenter float64,
    garage, renovated int,
) data.House {
    return data.House{
        HouseID:    houseID,
        District:   district,
        AreaM2:     areaM2,
        Bedrooms:   bedrooms,
        Bathrooms:  bathrooms,
        AgeYears:   ageYears,
        DistCenter: distCenter,
        Garage:     garage,
        Renovated:  renovated,
    }
}
