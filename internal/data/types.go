package data

type House struct {
    HouseID    string  `json:"house_id"`
    District   string  `json:"district"`
    AreaM2     float64 `json:"area_m2"`
    Bedrooms   int     `json:"bedrooms"`
    Bathrooms  int     `json:"bathrooms"`
    AgeYears   float64 `json:"age_years"`
    DistCenter float64 `json:"dist_center_km"`
    Garage     int     `json:"garage_spots"`
    Renovated  int     `json:"renovated"`
    Price      float64 `json:"price"`
}
