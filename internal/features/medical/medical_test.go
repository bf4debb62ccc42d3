package medical

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/features/crud/crudtest"
)

func clinic() MedicalServiceInput {
	return MedicalServiceInput{Name: "Sunrise Clinic", Type: TypeClinic, Address: "Shop 4, Skyon Arcade", Phone: "02225550101", Timings: "9 AM - 9 PM"}
}

func doctor(resident bool) DoctorInput {
	return DoctorInput{Name: "Dr. Mehta", Specialty: "Pediatrics", Location: "B/1201", Availability: "Evenings", IsResident: resident, PhoneNumber: "9820033333"}
}

func TestDirectory(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())
	asAdmin := crudtest.As(crudtest.Admin)

	dir, err := svc.Directory(context.Background())
	require.NoError(t, err)
	assert.Empty(t, dir.Services)
	assert.Empty(t, dir.Doctors)

	_, err = svc.Services.Create(asAdmin, clinic(), nil)
	require.NoError(t, err)
	_, err = svc.Doctors.Create(asAdmin, doctor(true), crudtest.Photo())
	require.NoError(t, err)

	dir, err = svc.Directory(context.Background())
	require.NoError(t, err)
	require.Len(t, dir.Services, 1)
	require.Len(t, dir.Doctors, 1)
	assert.Equal(t, "https://img.example/1.jpg", dir.Doctors[0].ImageURL)
	assert.Equal(t, "tel:02225550101", dir.Services[0].Contact.Call)
}

func TestDirectory_StoreFailure(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Directory(ctx)
	require.Error(t, err)
}

func TestAdminModerated(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())

	_, err := svc.Doctors.Create(crudtest.As(crudtest.ResidentA), doctor(true), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)
	_, err = svc.Services.Create(crudtest.As(crudtest.ResidentA), clinic(), nil)
	assert.ErrorIs(t, err, apperr.ErrUnauthorized)

	bad := clinic()
	bad.Type = "Pharmacy"
	_, err = svc.Services.Create(crudtest.As(crudtest.Admin), bad, nil)
	assert.ErrorIs(t, err, apperr.ErrValidation)

	_, err = svc.Services.Create(crudtest.As(crudtest.Admin), clinic(), crudtest.Photo())
	assert.ErrorIs(t, err, apperr.ErrValidation, "services take no image")
	assert.Zero(t, env.Backend.Writes("push"))
}

func TestHandler_Filters(t *testing.T) {
	env := crudtest.NewEnv(t)
	svc := NewService(env.Deps())
	r := crudtest.Router(func(rg *gin.RouterGroup) { NewHandler(svc, 0).Register(rg) })

	for _, resident := range []bool{true, false} {
		w := crudtest.Do(t, r, http.MethodPost, "/api/v1/medical/doctors", crudtest.Admin, doctor(resident))
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}
	hospital := clinic()
	hospital.Name, hospital.Type = "City Hospital", TypeHospital
	for _, in := range []MedicalServiceInput{clinic(), hospital} {
		w := crudtest.Do(t, r, http.MethodPost, "/api/v1/medical/services", crudtest.Admin, in)
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	}

	w := crudtest.Do(t, r, http.MethodGet, "/api/v1/medical/doctors?resident=true", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	docs := crudtest.Decode[crudtest.Items[Doctor]](t, w)
	require.Len(t, docs.Items, 1)
	assert.True(t, docs.Items[0].IsResident)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/medical/services?type=Hospital", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	services := crudtest.Decode[crudtest.Items[MedicalService]](t, w)
	require.Len(t, services.Items, 1)
	assert.Equal(t, "City Hospital", services.Items[0].Name)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/medical/doctors?resident=maybe", nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = crudtest.Do(t, r, http.MethodGet, "/api/v1/medical", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	dir := crudtest.Decode[Directory](t, w)
	assert.Len(t, dir.Services, 2)
	assert.Len(t, dir.Doctors, 2)
}

