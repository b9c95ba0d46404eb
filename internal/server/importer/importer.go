// Package importer loads the JSON files kept by the previous version of
// the site (users.json, payments.json, contacts.json) into the database.
// Rows that already exist are left untouched, so a run can be repeated.
package importer

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"time"

	"github.com/dmitrijs2005/dzakcloud/internal/common"
	"github.com/dmitrijs2005/dzakcloud/internal/cryptox"
	"github.com/dmitrijs2005/dzakcloud/internal/logging"
	"github.com/dmitrijs2005/dzakcloud/internal/server/models"
	"github.com/dmitrijs2005/dzakcloud/internal/server/repositories/repomanager"
)

const (
	EntityUsers    = "users"
	EntityPayments = "payments"
	EntityContacts = "contacts"
)

// Result summarizes one entity file. Err is set when the file could not be
// read or parsed; individual record failures only bump Failed.
type Result struct {
	Entity   string
	Read     int
	Inserted int
	Skipped  int
	Failed   int
	Err      error
}

func (r Result) String() string {
	s := fmt.Sprintf("%s: read=%d inserted=%d skipped=%d failed=%d",
		r.Entity, r.Read, r.Inserted, r.Skipped, r.Failed)
	if r.Err != nil {
		s += " error=" + r.Err.Error()
	}
	return s
}

type Importer struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
	hashParams  cryptox.Params
	now         func() time.Time
}

func New(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *Importer {
	return &Importer{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "importer"),
		hashParams:  cryptox.DefaultParams,
		now:         time.Now,
	}
}

// Run imports users, then payments, then contacts. A problem with one file
// does not stop the others; only context cancellation aborts the run.
func (im *Importer) Run(ctx context.Context, src Source) ([]Result, error) {
	im.logger.Info(ctx, "Starting legacy import", "source", src.String())

	steps := []struct {
		entity string
		run    func(context.Context, io.Reader, *Result) error
	}{
		{EntityUsers, im.importUsers},
		{EntityPayments, im.importPayments},
		{EntityContacts, im.importContacts},
	}

	results := make([]Result, 0, len(steps))
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return results, err
		}
		res := im.runFile(ctx, src, step.entity, step.run)
		results = append(results, res)
		im.logger.Info(ctx, "Import finished", "entity", res.Entity,
			"read", res.Read, "inserted", res.Inserted, "skipped", res.Skipped, "failed", res.Failed)
	}
	return results, ctx.Err()
}

func (im *Importer) runFile(ctx context.Context, src Source, entity string,
	run func(context.Context, io.Reader, *Result) error) Result {

	res := Result{Entity: entity}
	name := entity + ".json"

	f, err := src.Open(ctx, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			im.logger.Info(ctx, "No legacy file, skipping", "file", name)
			return res
		}
		im.logger.Error(ctx, "Cannot open legacy file", "file", name, "error", err)
		res.Err = err
		return res
	}
	defer f.Close()

	if err := run(ctx, f, &res); err != nil {
		im.logger.Error(ctx, "Cannot parse legacy file", "file", name, "error", err)
		res.Err = err
		return res
	}
	if res.Read == 0 {
		im.logger.Info(ctx, "Legacy file is empty, skipping", "file", name)
	}
	return res
}

// decodeAll reads a JSON array of T.
func decodeAll[T any](r io.Reader) ([]T, error) {
	var items []T
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	return items, nil
}

func (im *Importer) record(ctx context.Context, res *Result, id string, inserted bool, err error) {
	switch {
	case err != nil:
		res.Failed++
		im.logger.Error(ctx, "Cannot import record", "entity", res.Entity, "id", id, "error", err)
	case inserted:
		res.Inserted++
	default:
		res.Skipped++
	}
}

func (im *Importer) importUsers(ctx context.Context, r io.Reader, res *Result) error {
	items, err := decodeAll[legacyUser](r)
	if err != nil {
		return err
	}
	res.Read = len(items)

	repo := im.repomanager.Users(im.db)
	now := im.now()

	for _, lu := range items {
		email := common.NormalizeEmail(lu.Email)
		if email == "" {
			im.record(ctx, res, string(lu.ID), false, fmt.Errorf("%w: empty email", common.ErrorValidation))
			continue
		}

		plain := cryptox.DecodeLegacyPassword(lu.Password)
		hash, err := cryptox.HashPasswordWithParams(plain, im.hashParams)
		common.WipeByteArray(plain)
		if err != nil {
			im.record(ctx, res, email, false, err)
			continue
		}

		u := &models.User{
			Email:        email,
			PasswordHash: hash,
			FullName:     firstNonEmpty(lu.Name, lu.FullName, "Unknown"),
			CreatedAt:    parseTime(lu.CreatedAt, now),
			UpdatedAt:    parseTime(lu.UpdatedAt, now),
		}
		inserted, err := repo.InsertIgnore(ctx, u)
		im.record(ctx, res, email, inserted, err)
	}
	return nil
}

func (im *Importer) importPayments(ctx context.Context, r io.Reader, res *Result) error {
	items, err := decodeAll[legacyPayment](r)
	if err != nil {
		return err
	}
	res.Read = len(items)

	repo := im.repomanager.Payments(im.db)
	now := im.now()

	for _, lp := range items {
		if lp.ID == "" {
			im.record(ctx, res, "", false, fmt.Errorf("%w: payment without id", common.ErrorValidation))
			continue
		}

		p := &models.Payment{
			Email:     lp.Email,
			Amount:    lp.Amount,
			Currency:  common.DefaultCurrency,
			Service:   firstNonEmpty(lp.Service, lp.Package, "Unknown Service"),
			PaymentID: string(lp.ID),
			Status:    firstNonEmpty(lp.Status, common.PaymentStatusPending),
			CreatedAt: parseTime(lp.CreatedAt, now),
			UpdatedAt: parseTime(lp.UpdatedAt, now),
		}
		if lp.QRCodeURL != "" {
			qr := lp.QRCodeURL
			p.QRCodeURL = &qr
		}
		inserted, err := repo.InsertIgnore(ctx, p)
		im.record(ctx, res, p.PaymentID, inserted, err)
	}
	return nil
}

func (im *Importer) importContacts(ctx context.Context, r io.Reader, res *Result) error {
	items, err := decodeAll[legacyContact](r)
	if err != nil {
		return err
	}
	res.Read = len(items)

	repo := im.repomanager.Contacts(im.db)
	now := im.now()

	for _, lc := range items {
		c := &models.Contact{
			Name:        lc.Name,
			Email:       lc.Email,
			Topic:       lc.Topic,
			Subject:     lc.Subject,
			Description: lc.Description,
			Status:      firstNonEmpty(lc.Status, common.ContactStatusNew),
			Notes:       lc.Notes,
			CreatedAt:   parseTime(lc.CreatedAt, now),
			UpdatedAt:   parseTime(lc.UpdatedAt, now),
		}
		if lc.ID != "" {
			id := string(lc.ID)
			c.LegacyID = &id
		}
		inserted, err := repo.InsertIgnore(ctx, c)
		im.record(ctx, res, string(lc.ID), inserted, err)
	}
	return nil
}
