package usecase

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gearhead/internal/devserver"
	garagedomain "gearhead/internal/garage/domain"
	garagedto "gearhead/internal/garage/dto"
	"gearhead/pkg/gateway"
	"gearhead/pkg/identity"
	"gearhead/pkg/kvstore"
	"gearhead/pkg/validation"
)

func setup(t *testing.T) (*devserver.Server, *identity.Provider, GarageUsecase) {
	t.Helper()
	dev := devserver.New("test-secret")
	srv := httptest.NewServer(dev.Handler())
	t.Cleanup(srv.Close)

	provider, err := identity.NewProvider(context.Background(), identity.Options{
		APIKey:          "test-key",
		ToolkitEndpoint: srv.URL + "/identitytoolkit/v3/relyingparty/",
		SecureTokenURL:  srv.URL + "/v1/token",
		HTTPClient:      srv.Client(),
	}, kvstore.NewMemoryStore())
	require.NoError(t, err)

	api := gateway.NewClient(srv.URL, provider, 5*time.Second)
	return dev, provider, NewGarageUsecase(provider, api)
}

func civic() *garagedto.CreateCarRequest {
	return &garagedto.CreateCarRequest{
		Brand:    " Honda ",
		Model:    "Civic Si",
		Year:     2008,
		Color:    "Preto",
		Nickname: "Ninja",
		Specs: garagedto.SpecsRequest{
			Engine:       "K20Z3",
			Horsepower:   192,
			Torque:       19,
			Transmission: garagedomain.TransmissionManual,
			Drivetrain:   garagedomain.DrivetrainFWD,
			FuelType:     garagedomain.FuelFlex,
		},
	}
}

func TestCreateCar_PostsToPrincipalGarage(t *testing.T) {
	dev, provider, uc := setup(t)
	ctx := context.Background()
	principal, err := provider.SignUp(ctx, "jane@gearhead.dev", "abcdef", "Jane")
	require.NoError(t, err)
	dev.ResetRequests()

	var notified *garagedomain.Car
	uc.SetCarCreatedCallback(func(_ context.Context, car *garagedomain.Car) {
		notified = car
	})

	car, err := uc.CreateCar(ctx, civic())
	require.NoError(t, err)
	assert.NotEmpty(t, car.ID)
	assert.Equal(t, "Honda", car.Brand)
	assert.Equal(t, car, notified)

	reqs := dev.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, http.MethodPost, reqs[0].Method)
	assert.Equal(t, "/garage/"+principal.UID, reqs[0].Path)
	assert.True(t, reqs[0].Authorized)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(reqs[0].Body, &body))
	assert.NotContains(t, body, "modsList")
	assert.Equal(t, "Honda", body["brand"])
	assert.Equal(t, "MANUAL", body["specs"].(map[string]interface{})["transmission"])
}

func TestCreateCar_SendsMods(t *testing.T) {
	dev, provider, uc := setup(t)
	ctx := context.Background()
	_, err := provider.SignUp(ctx, "jane@gearhead.dev", "abcdef", "Jane")
	require.NoError(t, err)
	dev.ResetRequests()

	req := civic()
	req.ModsList = []string{" Intake ", "", "Coilovers"}
	car, err := uc.CreateCar(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, []string{"Intake", "Coilovers"}, car.ModsList)

	var body struct {
		ModsList []string `json:"modsList"`
	}
	require.NoError(t, json.Unmarshal(dev.Requests()[0].Body, &body))
	assert.Equal(t, []string{"Intake", "Coilovers"}, body.ModsList)
}

func TestCreateCar_RequiresPrincipal(t *testing.T) {
	dev, _, uc := setup(t)

	called := false
	uc.SetCarCreatedCallback(func(context.Context, *garagedomain.Car) { called = true })

	_, err := uc.CreateCar(context.Background(), civic())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.False(t, called)
	assert.Empty(t, dev.Requests())
}

func TestCreateCar_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*garagedto.CreateCarRequest)
		field  string
	}{
		{"missing brand", func(r *garagedto.CreateCarRequest) { r.Brand = "  " }, "brand"},
		{"missing model", func(r *garagedto.CreateCarRequest) { r.Model = "" }, "model"},
		{"zero year", func(r *garagedto.CreateCarRequest) { r.Year = 0 }, "year"},
		{"unknown transmission", func(r *garagedto.CreateCarRequest) { r.Specs.Transmission = "SEMI_AUTO" }, "transmission"},
		{"unknown drivetrain", func(r *garagedto.CreateCarRequest) { r.Specs.Drivetrain = "4WD" }, "drivetrain"},
		{"unknown fuel", func(r *garagedto.CreateCarRequest) { r.Specs.FuelType = "LPG" }, "fuelType"},
		{"negative horsepower", func(r *garagedto.CreateCarRequest) { r.Specs.Horsepower = -1 }, "horsepower"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dev, provider, uc := setup(t)
			ctx := context.Background()
			_, err := provider.SignUp(ctx, "jane@gearhead.dev", "abcdef", "Jane")
			require.NoError(t, err)
			dev.ResetRequests()

			req := civic()
			tt.mutate(req)
			_, err = uc.CreateCar(ctx, req)

			var verr *validation.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.NotEmpty(t, verr.Field(tt.field))
			assert.Empty(t, dev.Requests())
		})
	}
}

func TestCreateCar_EmptySpecsAreAccepted(t *testing.T) {
	dev, provider, uc := setup(t)
	ctx := context.Background()
	_, err := provider.SignUp(ctx, "jane@gearhead.dev", "abcdef", "Jane")
	require.NoError(t, err)

	_, err = uc.CreateCar(ctx, &garagedto.CreateCarRequest{Brand: "Fiat", Model: "Uno", Year: 1994})
	require.NoError(t, err)
	assert.Equal(t, 1, dev.Count(http.MethodPost, "/garage/"+provider.CurrentPrincipal().UID))
}

func TestCreateCar_BackendErrorSkipsCallback(t *testing.T) {
	dev, provider, uc := setup(t)
	ctx := context.Background()
	principal, err := provider.SignUp(ctx, "jane@gearhead.dev", "abcdef", "Jane")
	require.NoError(t, err)

	called := false
	uc.SetCarCreatedCallback(func(context.Context, *garagedomain.Car) { called = true })
	dev.Fail(http.MethodPost, "/garage/"+principal.UID, http.StatusInternalServerError)

	_, err = uc.CreateCar(ctx, civic())
	require.Error(t, err)
	assert.Equal(t, http.StatusInternalServerError, gateway.StatusCode(err))
	assert.False(t, called)
}
