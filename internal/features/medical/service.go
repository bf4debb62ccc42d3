package medical

import (
	"context"
	"strconv"

	"golang.org/x/sync/errgroup"

	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/features/crud"
	"github.com/skyon-community/skyon-backend/internal/registry"
)

type Service struct {
	Services *crud.Service[*MedicalService]
	Doctors  *crud.Service[*Doctor]
}

func NewService(deps crud.Deps) *Service {
	return &Service{
		Services: crud.NewService[*MedicalService](deps, registry.MedicalServices, crud.Options{
			Validate: crud.ValidateAs[MedicalServiceInput](),
		}),
		Doctors: crud.NewService[*Doctor](deps, registry.Doctors, crud.Options{
			ImageField: "imageUrl",
			Validate:   crud.ValidateAs[DoctorInput](),
		}),
	}
}

// Directory fetches both collections concurrently. Either failing fails the whole directory.
func (s *Service) Directory(ctx context.Context) (*Directory, error) {
	var dir Directory
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		dir.Services, err = s.Services.List(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		dir.Doctors, err = s.Doctors.List(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &dir, nil
}

// ByType keeps hospitals or clinics; "" and "All" keep everything.
func ByType(t string) (func(docstore.Record, *MedicalService) bool, error) {
	switch t {
	case "", "All":
		return nil, nil
	case TypeHospital, TypeClinic:
		return func(_ docstore.Record, m *MedicalService) bool { return m.Type == t }, nil
	}
	return nil, apperr.Invalid("type", "must be All, Hospital or Clinic")
}

// ByResident applies ?resident=true|false.
func ByResident(raw string) (func(docstore.Record, *Doctor) bool, error) {
	if raw == "" {
		return nil, nil
	}
	want, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, apperr.Invalid("resident", "must be true or false")
	}
	return func(_ docstore.Record, d *Doctor) bool { return d.IsResident == want }, nil
}
