package domain

type Transmission string

const (
	TransmissionManual     Transmission = "MANUAL"
	TransmissionAutomatic  Transmission = "AUTOMATIC"
	TransmissionDualClutch Transmission = "DUAL_CLUTCH"
	TransmissionCVT        Transmission = "CVT"
)

type Drivetrain string

const (
	DrivetrainFWD Drivetrain = "FWD"
	DrivetrainRWD Drivetrain = "RWD"
	DrivetrainAWD Drivetrain = "AWD"
)

type FuelType string

const (
	FuelGasoline FuelType = "GASOLINE"
	FuelEthanol  FuelType = "ETHANOL"
	FuelDiesel   FuelType = "DIESEL"
	FuelHybrid   FuelType = "HYBRID"
	FuelElectric FuelType = "ELECTRIC"
	FuelFlex     FuelType = "FLEX"
)

type Specs struct {
	Engine       string       `json:"engine"`
	Horsepower   int          `json:"horsepower"`
	Torque       int          `json:"torque"`
	Transmission Transmission `json:"transmission"`
	Drivetrain   Drivetrain   `json:"drivetrain"`
	FuelType     FuelType     `json:"fuelType"`
}

// Car is a vehicle in a user's garage.
type Car struct {
	ID           string   `json:"id"`
	Brand        string   `json:"brand"`
	Model        string   `json:"model"`
	Year         int      `json:"year"`
	Color        string   `json:"color"`
	Nickname     string   `json:"nickname"`
	Trim         string   `json:"trim"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Specs        Specs    `json:"specs"`
	ModsList     []string `json:"modsList"`
}
