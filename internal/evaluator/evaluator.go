package evaluator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-economizer/internal/domain"
	"github.com/couchcryptid/metar-economizer/internal/observability"
)

// Fetcher returns the raw station file for a station id.
type Fetcher interface {
	Fetch(ctx context.Context, station string) (string, error)
}

// Publisher writes a completed evaluation to an external sink.
type Publisher interface {
	Publish(ctx context.Context, ev domain.Evaluation) error
}

// UI is the interactive surface: answers come in, report sections go out.
type UI interface {
	Banner()
	SelectStation(ctx context.Context) (string, error)
	StationUnavailable(station string, err error)
	Retrieved(station, raw string)
	Observation(obs domain.WeatherObservation)
	Stale(age time.Duration)
	IneffectiveWind(reason string)
	Outdoor(s domain.PsychrometricState)
	ReadIndoor(ctx context.Context) (domain.IndoorConditions, error)
	Indoor(s domain.PsychrometricState)
	ReadOpening(ctx context.Context) (domain.WindowOpening, error)
	Result(r domain.EconomizerResult)
}

// Evaluator runs one economizer evaluation end to end.
type Evaluator struct {
	fetcher    Fetcher
	publisher  Publisher
	ui         UI
	table      *domain.SaturationTable
	logger     *slog.Logger
	metrics    *observability.Metrics
	staleAfter time.Duration
}

// New creates an Evaluator. Pass a nil publisher to skip the result sink.
func New(f Fetcher, p Publisher, ui UI, table *domain.SaturationTable, logger *slog.Logger, metrics *observability.Metrics, staleAfter time.Duration) *Evaluator {
	return &Evaluator{
		fetcher:    f,
		publisher:  p,
		ui:         ui,
		table:      table,
		logger:     logger,
		metrics:    metrics,
		staleAfter: staleAfter,
	}
}

// Run asks for a station, fetches and decodes its report, prompts for the
// indoor conditions and window geometry, and reports the heat flow.
//
// An unreachable station brings the menu back. A variable or calm wind ends
// the run after the observation is shown, returning *domain.IneffectiveWindError.
// Leaving at the menu returns domain.ErrUserExit. Cancelling ctx ends any
// pending prompt or fetch and returns ctx.Err().
func (e *Evaluator) Run(ctx context.Context) (domain.Evaluation, error) {
	e.ui.Banner()

	station, raw, err := e.fetchReport(ctx)
	if err != nil {
		return domain.Evaluation{}, err
	}
	e.ui.Retrieved(station, raw)

	obs, err := domain.ParseMETAR(raw)
	var windErr *domain.IneffectiveWindError
	if errors.As(err, &windErr) {
		e.ui.Observation(obs)
		e.ui.IneffectiveWind(windErr.Reason)
		e.metrics.IneffectiveWind.WithLabelValues(windErr.Reason).Inc()
		e.logger.Info("wind ineffective for economizer", "station", obs.StationID, "reason", windErr.Reason)
		return domain.Evaluation{}, fmt.Errorf("station %s: %w", station, err)
	}
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("station %s: %w", station, err)
	}
	e.ui.Observation(obs)
	e.checkStale(obs)

	outdoor, err := domain.OutdoorState(obs, e.table)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("outdoor air: %w", err)
	}
	e.ui.Outdoor(outdoor)

	conds, err := e.ui.ReadIndoor(ctx)
	if err != nil {
		return domain.Evaluation{}, err
	}
	indoor, err := domain.IndoorState(conds, e.table)
	if err != nil {
		return domain.Evaluation{}, fmt.Errorf("indoor air: %w", err)
	}
	e.ui.Indoor(indoor)

	opening, err := e.ui.ReadOpening(ctx)
	if err != nil {
		return domain.Evaluation{}, err
	}

	ev := domain.NewEvaluation(obs, indoor, outdoor, opening)
	e.ui.Result(ev.Result)
	e.metrics.Evaluations.WithLabelValues(string(ev.Result.Mode)).Inc()
	e.metrics.LastHeatFlow.Set(ev.Result.HeatFlowBTUH)
	e.logger.Info("evaluation complete",
		"station", ev.StationID,
		"mode", ev.Result.Mode,
		"heat_flow_btuh", ev.Result.HeatFlowBTUH,
		"mass_flow", ev.MassFlow,
	)

	e.publish(ctx, ev)
	return ev, nil
}

// fetchReport loops over the station menu until a report is retrieved.
func (e *Evaluator) fetchReport(ctx context.Context) (string, string, error) {
	for {
		station, err := e.ui.SelectStation(ctx)
		if err != nil {
			return "", "", err
		}

		raw, err := e.fetcher.Fetch(ctx, station)
		switch {
		case err == nil:
			return station, raw, nil
		case errors.Is(err, domain.ErrStationUnavailable), errors.Is(err, domain.ErrFetchTimeout):
			e.ui.StationUnavailable(station, err)
		default:
			return "", "", err
		}
	}
}

func (e *Evaluator) checkStale(obs domain.WeatherObservation) {
	age := obs.Age(domain.Now())
	if age <= e.staleAfter {
		return
	}
	e.metrics.StaleReports.Inc()
	e.logger.Warn("stale observation", "station", obs.StationID, "observed_at", obs.ObservedAt, "age", age)
	e.ui.Stale(age)
}

// publish sends the evaluation to the sink. Failures are logged only.
func (e *Evaluator) publish(ctx context.Context, ev domain.Evaluation) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, ev); err != nil {
		e.metrics.PublishErrors.Inc()
		e.logger.Error("publish evaluation failed", "station", ev.StationID, "error", err)
	}
}
