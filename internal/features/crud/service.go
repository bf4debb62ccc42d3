package crud

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/skyon-community/skyon-backend/internal/acl"
	"github.com/skyon-community/skyon-backend/internal/apperr"
	"github.com/skyon-community/skyon-backend/internal/audit"
	"github.com/skyon-community/skyon-backend/internal/docstore"
	"github.com/skyon-community/skyon-backend/internal/registry"
	"github.com/skyon-community/skyon-backend/internal/upload"
	"github.com/skyon-community/skyon-backend/internal/validation"
)

// Deps are shared by every feature service.
type Deps struct {
	Client   *docstore.Client
	Guard    *acl.Guard
	Uploader upload.Uploader
	Audit    audit.Recorder
	Log      *zap.Logger
}

// Options describe one collection's record rules.
type Options struct {
	// ImageField names the field that receives the uploaded image URL. Empty disables uploads.
	ImageField string
	// ImageRequired refuses creation without an image.
	ImageRequired bool
	// Validate checks the full record after a create or a merge. See ValidateAs.
	Validate func(rec docstore.Record) error
	// Defaults are written on create for fields the input leaves out.
	Defaults map[string]any
	// OnCreate may set server-computed fields before validation.
	OnCreate func(ctx context.Context, fields map[string]any) error
	// ReadOnly fields are maintained by dedicated operations and refused by Update.
	ReadOnly []string
}

// ValidateAs checks a record by decoding it into the input shape In and running its
// validate tags.
func ValidateAs[In any]() func(docstore.Record) error {
	return func(rec docstore.Record) error {
		in, err := docstore.Decode[In](rec)
		if err != nil {
			return apperr.Invalid("body", err.Error())
		}
		return validation.Struct(in)
	}
}

// Service runs the record flow for one collection.
type Service[T Entity] struct {
	repo     *registry.Repo[T]
	guard    *acl.Guard
	uploader upload.Uploader
	audit    audit.Recorder
	opts     Options
	log      *zap.Logger
}

func NewService[T Entity](deps Deps, coll registry.Collection, opts Options) *Service[T] {
	if deps.Audit == nil {
		deps.Audit = audit.Nop{}
	}
	if deps.Log == nil {
		deps.Log = zap.NewNop()
	}
	return &Service[T]{
		repo:     registry.NewRepo[T](deps.Client, coll),
		guard:    deps.Guard,
		uploader: deps.Uploader,
		audit:    deps.Audit,
		opts:     opts,
		log:      deps.Log.With(zap.String("collection", coll.String())),
	}
}

func (s *Service[T]) Collection() registry.Collection { return s.repo.Collection() }

func (s *Service[T]) Guard() *acl.Guard { return s.guard }

// Repo exposes the typed collection for writes that are not owner-gated, such as an RSVP.
func (s *Service[T]) Repo() *registry.Repo[T] { return s.repo }

// List returns the collection most recent first, keeping the records match accepts. A nil
// match keeps everything.
func (s *Service[T]) List(ctx context.Context, match func(rec docstore.Record, v T) bool) ([]T, error) {
	if err := s.guard.AuthorizeRead(ctx, s.Collection()); err != nil {
		return nil, err
	}
	records, err := s.repo.Records(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]T, 0, len(records))
	for _, rec := range records {
		v, err := s.view(ctx, rec)
		if err != nil {
			// One malformed record must not hide the rest of the board.
			s.log.Warn("skipping undecodable record", zap.String("id", rec.ID()), zap.Error(err))
			continue
		}
		if match == nil || match(rec, v) {
			out = append(out, v)
		}
	}
	return out, nil
}

func (s *Service[T]) Get(ctx context.Context, id string) (T, error) {
	var zero T
	if err := s.guard.AuthorizeRead(ctx, s.Collection()); err != nil {
		return zero, err
	}
	rec, err := s.record(ctx, id)
	if err != nil {
		return zero, err
	}
	return s.view(ctx, rec)
}

// Create authorizes the caller, validates in, uploads img when given and only then writes the
// record under the caller's ownership snapshot.
func (s *Service[T]) Create(ctx context.Context, in any, img *upload.Image) (T, error) {
	var zero T
	actor, err := s.guard.AuthorizeCreate(ctx, s.Collection())
	if err != nil {
		return zero, err
	}

	fields, err := docstore.Fields(in)
	if err != nil {
		return zero, apperr.Invalid("body", err.Error())
	}
	for k, v := range s.opts.Defaults {
		if _, ok := fields[k]; !ok {
			fields[k] = v
		}
	}
	if s.opts.OnCreate != nil {
		if err := s.opts.OnCreate(ctx, fields); err != nil {
			return zero, err
		}
	}
	if err := s.validate(docstore.Record(fields)); err != nil {
		return zero, err
	}
	if err := s.attachImage(ctx, fields, img); err != nil {
		return zero, err
	}
	if err := s.checkImage(fields); err != nil {
		return zero, err
	}

	id, err := s.repo.Create(ctx, fields, actor.Snapshot())
	if err != nil {
		return zero, err
	}
	s.log.Info("record created", zap.String("id", id), zap.String("uid", actor.UID))
	return s.Get(ctx, id)
}

// Update shallow-merges partial into the record after checking the caller may modify it.
func (s *Service[T]) Update(ctx context.Context, id string, partial map[string]any, img *upload.Image) (T, error) {
	return s.Edit(ctx, id, func(docstore.Record) (map[string]any, error) {
		var errs apperr.Collector
		for _, f := range s.opts.ReadOnly {
			if _, ok := partial[f]; ok {
				errs.Add(f, "cannot be edited directly")
			}
		}
		if err := errs.Err(); err != nil {
			return nil, err
		}
		if partial == nil {
			partial = map[string]any{}
		}
		return partial, nil
	}, img)
}

// Edit is Update for changes computed from the current record, such as rewriting an embedded
// list. fn runs after authorization; the merged result is validated before the write.
func (s *Service[T]) Edit(ctx context.Context, id string, fn func(current docstore.Record) (map[string]any, error), img *upload.Image) (T, error) {
	var zero T
	rec, err := s.record(ctx, id)
	if err != nil {
		return zero, err
	}
	decision, err := s.guard.AuthorizeMutate(ctx, s.Collection(), rec)
	if err != nil {
		return zero, err
	}

	partial, err := fn(rec.Clone())
	if err != nil {
		return zero, err
	}
	if err := s.attachImage(ctx, partial, img); err != nil {
		return zero, err
	}
	if len(partial) == 0 {
		return zero, apperr.Invalid("body", "nothing to update")
	}

	merged := rec.Clone()
	for k, v := range partial {
		merged[k] = v
	}
	if err := s.validate(merged); err != nil {
		return zero, err
	}
	if err := s.checkImage(merged); err != nil {
		return zero, err
	}

	if err := s.repo.Update(ctx, id, partial); err != nil {
		return zero, err
	}
	s.writeAudit(ctx, id, audit.ActionUpdate, decision)
	return s.Get(ctx, id)
}

// Delete removes the record after checking the caller may modify it.
func (s *Service[T]) Delete(ctx context.Context, id string) error {
	rec, err := s.record(ctx, id)
	if err != nil {
		return err
	}
	decision, err := s.guard.AuthorizeMutate(ctx, s.Collection(), rec)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.writeAudit(ctx, id, audit.ActionDelete, decision)
	return nil
}

// Increment bumps a counter field of a record any signed-in resident may act on.
func (s *Service[T]) Increment(ctx context.Context, id, field string, delta float64) (float64, error) {
	if _, err := s.record(ctx, id); err != nil {
		return 0, err
	}
	return s.repo.Increment(ctx, id, field, delta)
}

// Audit writes an audit entry for an action authorized outside Edit or Delete.
func (s *Service[T]) Audit(ctx context.Context, id, action string, decision acl.Decision) {
	s.writeAudit(ctx, id, action, decision)
}

func (s *Service[T]) record(ctx context.Context, id string) (docstore.Record, error) {
	rec, found, err := s.repo.Record(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s/%s: %w", s.Collection(), id, apperr.ErrNotFound)
	}
	return rec, nil
}

func (s *Service[T]) view(ctx context.Context, rec docstore.Record) (T, error) {
	v, err := docstore.Decode[T](rec)
	if err != nil {
		return v, err
	}
	m := v.Base()
	m.ID = rec.ID()
	m.CreatedAt = rec.CreatedAt()
	m.CanMutate = s.guard.CanMutate(ctx, s.Collection(), rec)
	if c, ok := any(v).(Contactable); ok {
		m.Contact = ContactLinks(c.ContactNumbers())
	}
	return v, nil
}

func (s *Service[T]) validate(rec docstore.Record) error {
	if s.opts.Validate == nil {
		return nil
	}
	return s.opts.Validate(rec)
}

// checkImage refuses a record whose image field is missing when a photo is mandatory, or that
// points anywhere but a hosted https address.
func (s *Service[T]) checkImage(fields map[string]any) error {
	if s.opts.ImageField == "" {
		return nil
	}
	url, ok := fields[s.opts.ImageField].(string)
	if !ok && fields[s.opts.ImageField] != nil {
		return apperr.Invalid(s.opts.ImageField, "must be an uploaded https image URL")
	}
	if url == "" {
		if s.opts.ImageRequired {
			return apperr.Invalid(s.opts.ImageField, "a photo is required")
		}
		return nil
	}
	if !validation.ImageURL(url) {
		return apperr.Invalid(s.opts.ImageField, "must be an uploaded https image URL")
	}
	return nil
}

func (s *Service[T]) attachImage(ctx context.Context, fields map[string]any, img *upload.Image) error {
	if img == nil {
		return nil
	}
	if s.opts.ImageField == "" {
		return apperr.Invalid("image", "this record does not take an image")
	}
	url, err := s.Upload(ctx, *img)
	if err != nil {
		return err
	}
	fields[s.opts.ImageField] = url
	return nil
}

// Upload sends img to the image host. Callers write the returned URL only on success.
func (s *Service[T]) Upload(ctx context.Context, img upload.Image) (string, error) {
	if s.uploader == nil {
		return "", fmt.Errorf("%w: no image host configured", apperr.ErrUploadFailed)
	}
	return s.uploader.Upload(ctx, img)
}

func (s *Service[T]) writeAudit(ctx context.Context, id, action string, d acl.Decision) {
	e := audit.Entry{
		Collection: s.Collection().String(),
		RecordID:   id,
		Action:     action,
		AsAdmin:    d.AsAdmin,
	}
	if d.Actor != nil {
		e.ActorUID = d.Actor.UID
		e.ActorEmail = d.Actor.Email
	}
	if err := s.audit.Record(ctx, e); err != nil {
		s.log.Warn("failed to write audit entry", zap.String("id", id), zap.String("action", action), zap.Error(err))
	}
}

// ContainsText reports whether any top-level text field of rec contains q, ignoring case.
// An empty q matches everything.
func ContainsText(rec docstore.Record, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	for k, v := range rec {
		if k == docstore.FieldID {
			continue
		}
		if s, ok := v.(string); ok && strings.Contains(strings.ToLower(s), q) {
			return true
		}
	}
	return false
}
