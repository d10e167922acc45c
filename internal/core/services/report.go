package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"wandb-ci/internal/core/domain"
	ports "wandb-ci/internal/core/ports/output"
)

// ReportService builds run comparison reports
type ReportService struct {
	tracking ports.TrackingClient
	output   ports.CIOutput
	appURL   string
	newID    func() string
}

// NewReportService creates a new report service. output may be nil.
func NewReportService(tracking ports.TrackingClient, output ports.CIOutput, appURL string) *ReportService {
	return &ReportService{
		tracking: tracking,
		output:   output,
		appURL:   appURL,
		newID:    uuid.NewString,
	}
}

// CreateComparisonRequest contains parameters for a comparison report
type CreateComparisonRequest struct {
	Entity  string
	Project string
	Tag     string
	BaseRun *domain.Run
	NewRun  *domain.Run
}

// CreateComparison saves a new report comparing BaseRun and NewRun and returns
// its URL. Every call creates a new report.
func (s *ReportService) CreateComparison(ctx context.Context, req CreateComparisonRequest) (string, error) {
	if req.BaseRun == nil || req.NewRun == nil {
		return "", fmt.Errorf("comparison needs two runs: %w", domain.ErrRunNotFound)
	}

	report := &domain.Report{
		Name:        s.newID(),
		Title:       domain.ComparisonTitle,
		Description: domain.ComparisonDescription(req.Tag, req.BaseRun, req.NewRun),
		Entity:      req.Entity,
		Project:     req.Project,
		Width:       domain.ReportWidthFluid,
		Spec: domain.BuildComparisonSpec(domain.ComparisonSpecInput{
			Entity:  req.Entity,
			Project: req.Project,
			BaseRun: req.BaseRun,
			NewRun:  req.NewRun,
		}, s.newID),
	}

	saved, err := s.tracking.SaveReport(ctx, report)
	if err != nil {
		return "", fmt.Errorf("save comparison report: %w", err)
	}

	reportURL, err := saved.URL(s.appURL)
	if err != nil {
		return "", err
	}

	log.WithFields(log.Fields{
		"base_run": req.BaseRun.Path(),
		"new_run":  req.NewRun.Path(),
		"url":      reportURL,
	}).Info("comparison report saved")

	if err := emitOutput(s.output, OutputReportURL, reportURL); err != nil {
		return "", err
	}

	return reportURL, nil
}
