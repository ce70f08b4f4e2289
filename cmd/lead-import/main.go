// Command lead-import loads a prospect CSV into the pipeline: one company,
// optional contact, and one identified lead per row.
//
// Expected header:
//
//	company_name,sector,zone,max_demand_kw,tenant_structure,operating_hours,
//	roof_size_sqft,monthly_bill_rm,owner_occupied,contact_name,contact_phone,
//	contact_email,opportunity_type,source
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"leadgen_backend/internal/events"
	"leadgen_backend/internal/leads/engine"
	"leadgen_backend/internal/leads/repository"
	"leadgen_backend/internal/leads/scoring"
	"leadgen_backend/internal/leads/service"
	"leadgen_backend/internal/leads/transport"
	"leadgen_backend/platform/config"
	"leadgen_backend/platform/db"
	"leadgen_backend/platform/logger"
	"leadgen_backend/platform/validator"
)

type row struct {
	line            int
	req             transport.CreateCompanyRequest
	contactName     string
	contactPhone    string
	contactEmail    string
	opportunityType string
	source          string
}

func main() {
	filePath := flag.String("file", "", "path to the prospect CSV")
	workers := flag.Int("workers", 4, "concurrent import workers")
	flag.Parse()

	if *filePath == "" {
		fmt.Fprintln(os.Stderr, "usage: lead-import -file prospects.csv [-workers 4]")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}
	log := logger.New(cfg.Env)

	ctx := context.Background()
	pool, err := db.NewPool(ctx, cfg)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	profile, err := scoring.LoadProfile(cfg.GetScoringProfilePath())
	if err != nil {
		log.Error("failed to load scoring profile", "error", err)
		os.Exit(1)
	}

	repo := repository.New(pool)
	bus := events.NewInMemoryBus(log)
	svc := service.New(repo, engine.New(repo, log), bus, profile, log)

	val := validator.New()

	rows, err := readRows(*filePath)
	if err != nil {
		log.Error("failed to read csv", "error", err)
		os.Exit(1)
	}
	log.Info("import starting", "rows", len(rows), "workers", *workers)

	var imported, failed atomic.Int64
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(*workers)

	for _, r := range rows {
		group.Go(func() error {
			if err := val.Struct(r.req); err != nil {
				failed.Add(1)
				log.Error("row failed validation", "line", r.line, "company", r.req.Name, "error", err)
				return nil
			}
			if err := importRow(groupCtx, svc, r); err != nil {
				failed.Add(1)
				log.Error("row import failed", "line", r.line, "company", r.req.Name, "error", err)
				return nil
			}
			imported.Add(1)
			return nil
		})
	}
	_ = group.Wait()

	log.Info("import finished", "imported", imported.Load(), "failed", failed.Load())
	if failed.Load() > 0 {
		os.Exit(1)
	}
}

func importRow(ctx context.Context, svc *service.Service, r row) error {
	company, err := svc.CreateCompany(ctx, r.req)
	if err != nil {
		return fmt.Errorf("create company: %w", err)
	}

	leadReq := transport.CreateLeadRequest{
		CompanyID:       company.ID,
		OpportunityType: r.opportunityType,
		Source:          r.source,
	}

	if r.contactName != "" {
		contact, err := svc.CreateContact(ctx, transport.CreateContactRequest{
			CompanyID: company.ID,
			Name:      r.contactName,
			Phone:     optional(r.contactPhone),
			Email:     optional(r.contactEmail),
		})
		if err != nil {
			return fmt.Errorf("create contact: %w", err)
		}
		leadReq.ContactID = &contact.ID
	}

	if _, err := svc.CreateLead(ctx, leadReq, nil); err != nil {
		return fmt.Errorf("create lead: %w", err)
	}
	return nil
}

func readRows(path string) ([]row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"company_name", "sector", "zone", "opportunity_type"} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("missing required column %q", required)
		}
	}

	get := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	rows := make([]row, 0)
	line := 1
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		r := row{
			line: line,
			req: transport.CreateCompanyRequest{
				Name:            get(record, "company_name"),
				Sector:          get(record, "sector"),
				Zone:            get(record, "zone"),
				MaxDemandKW:     parseFloat(get(record, "max_demand_kw")),
				TenantStructure: get(record, "tenant_structure"),
				OperatingHours:  get(record, "operating_hours"),
				RoofSizeSqft:    parseFloat(get(record, "roof_size_sqft")),
				MonthlyBillRM:   parseFloat(get(record, "monthly_bill_rm")),
				OwnerOccupied:   parseBool(get(record, "owner_occupied")),
			},
			contactName:     get(record, "contact_name"),
			contactPhone:    get(record, "contact_phone"),
			contactEmail:    get(record, "contact_email"),
			opportunityType: get(record, "opportunity_type"),
			source:          get(record, "source"),
		}
		rows = append(rows, r)
	}
	return rows, nil
}

func parseFloat(raw string) *float64 {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseBool(raw string) *bool {
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil
	}
	return &v
}

func optional(raw string) *string {
	if raw == "" {
		return nil
	}
	return &raw
}
