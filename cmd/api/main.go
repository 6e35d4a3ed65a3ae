package main

import (
    "encoding/gob"
    "net/http"
    "os"
    "path/filepath"

    "github.com/gin-gonic/gin"
    "go.uber.org/zap"

    "housebag/internal/data"
    "housebag/internal/ensemble"
    "housebag/internal/features"
    _ "housebag/internal/models"
    "housebag/pkg/utils"
)

// heuristicPricer is the fallback when no trained model file is present:
// district rate times area with flat adjustments.
type heuristicPricer struct{}

var heuristicRate = map[string]float64{
    "Centro": 5000,
    "Norte":  3000,
    "Sul":    4500,
    "Leste":  2800,
    "Oeste":  3500,
}

func (h *heuristicPricer) price(hse data.House) float64 {
    rate, ok := heuristicRate[hse.District]
    if !ok { rate = 3500 }
    p := rate * hse.AreaM2
    p *= 1 - 0.005*hse.AgeYears
    p += float64(hse.Garage) * 12000
    if hse.Renovated == 1 { p *= 1.1 }
    if p < 30000 { p = 30000 }
    return p
}

type pricer struct {
    ens       *ensemble.Ensemble
    heuristic *heuristicPricer
}

func (p *pricer) Price(h data.House) (float64, string, error) {
    if p.ens == nil {
        return p.heuristic.price(h), "Heuristic", nil
    }
    v, _ := features.Vectorize(h)
    est, err := p.ens.Predict(v)
    if err != nil { return 0, "", err }
    return est, "Bagging/" + p.ens.LearnerName, nil
}

var model pricer

func main() {
    logger := utils.Logger()
    defer logger.Sync()

    path := os.Getenv("MODEL_PATH")
    if path == "" { path = filepath.Join("models", "bag_tree.gob") }
    if f, err := os.Open(path); err == nil {
        defer f.Close()
        dec := gob.NewDecoder(f)
        var ens ensemble.Ensemble
        if err := dec.Decode(&ens); err == nil && len(ens.Members) > 0 {
            model.ens = &ens
            logger.Info("Model loaded", zap.String("path", path), zap.String("learner", ens.LearnerName), zap.Int("rounds", len(ens.Members)))
        } else {
            logger.Warn("Model file unreadable, using heuristic", zap.String("path", path), zap.Error(err))
        }
    } else {
        logger.Warn("No model file, using heuristic", zap.String("path", path))
    }
    model.heuristic = &heuristicPricer{}

    r := gin.Default()

    r.Static("/static", "cmd/api/static")
    r.GET("/dashboard", func(c *gin.Context) {
        c.File("cmd/api/static/index.html")
    })
    r.GET("/dashboard/data", dashboardData)
    r.GET("/model", modelInfo)

    api := r.Group("/")
    api.Use(apiKeyMiddleware)
    api.POST("/predict", handlePredict)
    api.POST("/batch", handleBatch)

    port := os.Getenv("PORT")
    if port == "" { port = "8080" }
    r.Run(":" + port)
}

func apiKeyMiddleware(c *gin.Context) {
    key := os.Getenv("API_KEY")
    if key == "" { c.Next(); return }
    got := c.GetHeader("X-API-Key")
    if got != key { c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"}); return }
    c.Next()
}

type predictReq struct {
    HouseID    string  `json:"house_id"`
    District   string  `json:"district" binding:"required"`
    AreaM2     float64 `json:"area_m2" binding:"required,gt=0"`
    Bedrooms   int     `json:"bedrooms" binding:"gte=0"`
    Bathrooms  int     `json:"bathrooms" binding:"gte=0"`
    AgeYears   float64 `json:"age_years" binding:"gte=0"`
    DistCenter float64 `json:"dist_center_km" binding:"gte=0"`
    Garage     int     `json:"garage_spots" binding:"gte=0"`
    Renovated  int     `json:"renovated" binding:"gte=0,lte=1"`
}

func (req predictReq) house() data.House {
    return features.BuildHouse(req.HouseID, req.District, req.AreaM2,
        req.Bedrooms, req.Bathrooms, req.AgeYears, req.DistCenter,
        req.Garage, req.Renovated)
}

func handlePredict(c *gin.Context) {
    var req predictReq
    if err := c.BindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return
    }
    est, name, err := model.Price(req.house())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return
    }
    c.JSON(http.StatusOK, gin.H{"price": est, "model": name})
}

func handleBatch(c *gin.Context) {
    var items []predictReq
    if err := c.BindJSON(&items); err != nil { c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()}); return }
    out := make([]gin.H, len(items))
    for i := range items {
        est, name, err := model.Price(items[i].house())
        if err != nil {
            c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()}); return
        }
        out[i] = gin.H{"house_id": items[i].HouseID, "price": est, "model": name}
    }
    c.JSON(http.StatusOK, out)
}

func modelInfo(c *gin.Context) {
    if model.ens == nil {
        c.JSON(http.StatusOK, gin.H{"model": "Heuristic", "rounds": 0})
        return
    }
    c.JSON(http.StatusOK, gin.H{
        "model":        "Bagging/" + model.ens.LearnerName,
        "rounds":       len(model.ens.Members),
        "num_features": model.ens.NumFeatures,
    })
}

func dashboardData(c *gin.Context) {
    houses, err := data.LoadHouses("data/synthetic.csv")
    if err != nil { c.JSON(http.StatusOK, gin.H{"items": []gin.H{}}); return }
    max := 200
    district := c.Query("district")
    items := make([]gin.H, 0, max)
    for _, h := range houses {
        if len(items) >= max { break }
        if district != "" && h.District != district { continue }
        est, name, err := model.Price(h)
        if err != nil { continue }
        items = append(items, gin.H{
            "house_id":  h.HouseID,
            "district":  h.District,
            "area_m2":   h.AreaM2,
            "age_years": h.AgeYears,
            "price":     h.Price,
            "estimate":  est,
            "model":     name,
        })
    }
    c.JSON(http.StatusOK, gin.H{"items": items})
}
