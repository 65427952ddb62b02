package app

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"envdashboard/libs/db"
	"envdashboard/services/dashboard-cli/internal/clients"
	"envdashboard/services/dashboard-cli/internal/render"
	"envdashboard/services/dashboard-cli/internal/repository"
	"envdashboard/services/dashboard-cli/internal/router"
)

func (a *App) cmdRecords(ctx context.Context, p *render.Printer, args []string) error {
	verb, rest, err := subcommand("records", args, "list", "template", "upload", "archive")
	if err != nil {
		return err
	}
	switch verb {
	case "template":
		return a.recordsTemplate(ctx, p, rest)
	case "upload":
		return a.recordsUpload(ctx, p, rest)
	case "archive":
		return a.recordsArchive(ctx, p, rest)
	default:
		return a.recordsList(ctx, p, rest)
	}
}

type recordFlags struct {
	sensors, start, end, before, after *string
	offset, limit                      *int
}

func bindRecordFlags(fs *flag.FlagSet) recordFlags {
	return recordFlags{
		sensors: fs.String("sensors", "", "comma-separated sensor ids"),
		start:   fs.String("start", "", "measured at or after (RFC 3339 or YYYY-MM-DD)"),
		end:     fs.String("end", "", "measured at or before"),
		before:  fs.String("before", "", "created before"),
		after:   fs.String("after", "", "created after"),
		offset:  fs.Int("offset", 0, "skip this many records"),
		limit:   fs.Int("limit", 0, "return at most this many records"),
	}
}

func (f recordFlags) query() (clients.RecordsQuery, error) {
	q := clients.RecordsQuery{Offset: *f.offset, Limit: *f.limit}
	ids, err := parseIDs(*f.sensors)
	if err != nil {
		return q, err
	}
	q.SensorIDs = ids
	if q.StartTime, err = parseTime(*f.start); err != nil {
		return q, err
	}
	if q.EndTime, err = parseTime(*f.end); err != nil {
		return q, err
	}
	if q.BeforeCreatedAt, err = parseTime(*f.before); err != nil {
		return q, err
	}
	if q.AfterCreatedAt, err = parseTime(*f.after); err != nil {
		return q, err
	}
	return q, nil
}

func (a *App) recordsList(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("records list")
	rf := bindRecordFlags(fs)
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	q, err := rf.query()
	if err != nil {
		return err
	}
	if err := a.enter(ctx, router.Home); err != nil {
		return err
	}
	env, err := checked(a.client.GetRecords(ctx, q))
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}
	return p.Records(env.Payload, env.Total)
}

func (a *App) recordsTemplate(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("records template")
	out := fs.String("out", "", "write the template to this file instead of stdout")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}
	tmpl, err := a.client.DownloadTemplate(ctx)
	if err != nil {
		return fmt.Errorf("download template: %w", err)
	}
	if *out == "" {
		fmt.Fprint(a.out, tmpl)
		return nil
	}
	if err := os.WriteFile(*out, []byte(tmpl), 0o644); err != nil {
		return fmt.Errorf("write template: %w", err)
	}
	p.Line("template written to %s", *out)
	return nil
}

func (a *App) recordsUpload(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("records upload")
	path := fs.String("file", "", "CSV file to upload")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("%w: records upload requires -file", ErrUsage)
	}
	if err := a.enter(ctx, router.Admin); err != nil {
		return err
	}

	f, err := os.Open(*path)
	if err != nil {
		return fmt.Errorf("open upload: %w", err)
	}
	defer closeQuietly(f, a.logger, *path)

	env, err := checked(a.client.UploadCSVRecords(ctx, filepath.Base(*path), f))
	if err != nil {
		return fmt.Errorf("upload records: %w", err)
	}
	if p.Structured() {
		return p.Value(env.Payload)
	}
	p.Line("uploaded %s", filepath.Base(*path))
	return nil
}

// recordsArchive fetches records and copies them into the Postgres archive.
func (a *App) recordsArchive(ctx context.Context, p *render.Printer, args []string) error {
	fs := a.subFlags("records archive")
	rf := bindRecordFlags(fs)
	dsn := fs.String("dsn", a.cfg.Archive.DSN, "Postgres DSN of the archive")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if *dsn == "" {
		return errors.New("records archive: no archive DSN configured (set ENVMON_ARCHIVE_DSN or -dsn)")
	}
	q, err := rf.query()
	if err != nil {
		return err
	}
	if err := a.enter(ctx, router.Home); err != nil {
		return err
	}

	env, err := checked(a.client.GetRecords(ctx, q))
	if err != nil {
		return fmt.Errorf("fetch records: %w", err)
	}

	conn, err := db.OpenPostgres(ctx, *dsn)
	if err != nil {
		return err
	}
	defer closeQuietly(conn, a.logger, "archive")

	archive := repository.NewRecordArchive(conn)
	if err := archive.EnsureSchema(ctx); err != nil {
		return fmt.Errorf("archive schema: %w", err)
	}
	n, err := archive.SaveRecords(ctx, env.Payload)
	if err != nil {
		return fmt.Errorf("archive records: %w", err)
	}
	counts, err := archive.CountBySensor(ctx)
	if err != nil {
		return fmt.Errorf("archive counts: %w", err)
	}
	if p.Structured() {
		return p.Value(map[string]interface{}{"archived": n, "by_sensor": counts})
	}

	p.Line("archived %d of %d fetched records", n, len(env.Payload))
	ids := make([]uint, 0, len(counts))
	for id := range counts {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	rows := make([][]string, len(ids))
	for i, id := range ids {
		rows[i] = []string{strconv.FormatUint(uint64(id), 10), strconv.FormatInt(counts[id], 10)}
	}
	p.Table([]string{"SENSOR", "ARCHIVED"}, rows)
	return nil
}
