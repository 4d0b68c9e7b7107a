package models

// ============================================================================
// HISTORICAL DATASET RECORDS
// ============================================================================
// All record types are immutable after load. The dataset store owns them for
// the whole process lifetime; query code only ever reads them.

// AgriculturalRecord is one historical crop trial outcome from the district
// survey dataset. Column order is positional and fixed (24 columns).
type AgriculturalRecord struct {
	State            string  `json:"state"`
	District         string  `json:"district"`
	Village          string  `json:"village"`
	Latitude         float64 `json:"latitude"`
	Longitude        float64 `json:"longitude"`
	Year             int     `json:"year"`
	Season           string  `json:"season"`
	Crop             string  `json:"crop"`
	AreaHectares     float64 `json:"area_hectares"`
	SoilType         string  `json:"soil_type"`
	SoilPH           float64 `json:"soil_ph"`
	SoilMoisture     float64 `json:"soil_moisture"`
	AnnualRainfallMM float64 `json:"annual_rainfall_mm"`
	AvgTemperatureC  float64 `json:"avg_temperature_c"`
	ClimateRisk      string  `json:"climate_risk"`
	DroughtOccurred  bool    `json:"drought_occurred"`
	FloodOccurred    bool    `json:"flood_occurred"`
	IrrigationType   string  `json:"irrigation_type"`
	InputCost        float64 `json:"input_cost"`
	YieldKgPerHa     float64 `json:"yield_kg_per_hectare"`
	MarketPrice      float64 `json:"market_price"`
	ROIPercent       float64 `json:"roi_percent"`
	SuccessRating    float64 `json:"success_rating"`
	FarmerFeedback   string  `json:"farmer_feedback"`
}

// CropTrialRecord is one row of the soil-nutrient trial dataset (the
// alternate dataset variant used by the strict matching policy).
type CropTrialRecord struct {
	Nitrogen    float64 `json:"n"`
	Phosphorus  float64 `json:"p"`
	Potassium   float64 `json:"k"`
	Temperature float64 `json:"temperature"`
	Humidity    float64 `json:"humidity"`
	PH          float64 `json:"ph"`
	RainfallMM  float64 `json:"rainfall"`
	Crop        string  `json:"crop"`
}

// FertilizerRecord maps soil/crop conditions to a recommended fertilizer.
type FertilizerRecord struct {
	Temperature    float64 `json:"temperature"`
	Humidity       float64 `json:"humidity"`
	Moisture       float64 `json:"moisture"`
	SoilType       string  `json:"soil_type"`
	CropType       string  `json:"crop_type"`
	Nitrogen       float64 `json:"n"`
	Potassium      float64 `json:"k"`
	Phosphorus     float64 `json:"p"`
	FertilizerName string  `json:"fertilizer_name"`
}

// RainfallRecord is one station-year of the rainfall time series: twelve
// monthly figures plus the annual total, with the station coordinates.
type RainfallRecord struct {
	Name        string      `json:"name"`
	Subdivision string      `json:"subdivision"`
	Year        int         `json:"year"`
	Monthly     [12]float64 `json:"monthly"`
	AnnualMM    float64     `json:"annual_mm"`
	Latitude    float64     `json:"latitude"`
	Longitude   float64     `json:"longitude"`
}
