package evaluator_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/couchcryptid/metar-economizer/internal/adapter/console"
	"github.com/couchcryptid/metar-economizer/internal/domain"
	"github.com/couchcryptid/metar-economizer/internal/evaluator"
	"github.com/couchcryptid/metar-economizer/internal/observability"
)

const (
	reportKSBY = "2024/05/14 12:53\nKSBY 141253Z AUTO 27008G15KT 10SM CLR 12/08 A3012 RMK AO2\n"
	reportVRB  = "2024/05/14 12:55\nKDOV 141255Z VRB03KT 10SM 20/10 A3000\n"
	reportCalm = "2024/05/14 12:55\nKGED 141255Z AUTO 00000KT 10SM 20/10 A3000\n"

	// Salisbury, 72°F / 50% indoors, two 24x12 in windows facing west.
	answersKSBY = "2\n72\n50\n24\n12\n2\n270\n"
)

// --- mocks ---

type mockFetcher struct {
	reports map[string]string
	errs    map[string]error
	calls   []string
}

func (m *mockFetcher) Fetch(_ context.Context, station string) (string, error) {
	m.calls = append(m.calls, station)
	if err, ok := m.errs[station]; ok {
		return "", err
	}
	raw, ok := m.reports[station]
	if !ok {
		return "", fmt.Errorf("fetch %s: %w: status 404", station, domain.ErrStationUnavailable)
	}
	return raw, nil
}

type mockPublisher struct {
	published []domain.Evaluation
	err       error
}

func (m *mockPublisher) Publish(_ context.Context, ev domain.Evaluation) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, ev)
	return nil
}

type harness struct {
	fetcher   *mockFetcher
	publisher *mockPublisher
	metrics   *observability.Metrics
	out       *bytes.Buffer
	eval      *evaluator.Evaluator
}

func newHarness(t *testing.T, input string, table *domain.SaturationTable) *harness {
	t.Helper()
	return newHarnessFrom(t, strings.NewReader(input), table)
}

func newHarnessFrom(t *testing.T, in io.Reader, table *domain.SaturationTable) *harness {
	t.Helper()
	fakeClock := clockwork.NewFakeClockAt(time.Date(2024, 5, 14, 13, 5, 0, 0, time.UTC))
	domain.SetClock(fakeClock)
	t.Cleanup(func() { domain.SetClock(nil) })

	if table == nil {
		var err error
		table, err = domain.LoadSaturationTable(filepath.Join("..", "..", "humidityratio.csv"))
		require.NoError(t, err)
	}

	h := &harness{
		fetcher: &mockFetcher{
			reports: map[string]string{"KSBY": reportKSBY, "KDOV": reportVRB, "KGED": reportCalm},
			errs:    map[string]error{},
		},
		publisher: &mockPublisher{},
		metrics:   observability.NewMetrics(),
		out:       &bytes.Buffer{},
	}
	ui := console.New(in, h.out)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h.eval = evaluator.New(h.fetcher, h.publisher, ui, table, logger, h.metrics, 2*time.Hour)
	return h
}

// --- tests ---

func TestEvaluator_Run_Cooling(t *testing.T) {
	h := newHarness(t, answersKSBY, nil)

	ev, err := h.eval.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"KSBY"}, h.fetcher.calls)
	assert.Equal(t, "KSBY", ev.StationID)
	assert.InDelta(t, 0.73974, ev.Outdoor.RelativeHumidity, 1e-5)
	assert.InDelta(t, 19.9744, ev.Outdoor.Enthalpy, 1e-4)
	assert.InDelta(t, 26.5169, ev.Indoor.Enthalpy, 1e-4)
	assert.InDelta(t, 720.1422, ev.MassFlow, 1e-4)
	assert.Equal(t, domain.ModeCooling, ev.Result.Mode)
	assert.InDelta(t, 4711.48, ev.Result.HeatFlowBTUH, 0.01)
	assert.InDelta(t, 0.3926, ev.Result.Equivalent, 1e-4)
	assert.Equal(t, time.Date(2024, 5, 14, 13, 5, 0, 0, time.UTC), ev.EvaluatedAt)

	require.Len(t, h.publisher.published, 1)
	assert.Equal(t, ev, h.publisher.published[0])

	out := h.out.String()
	assert.Contains(t, out, "Location: KSBY")
	assert.Contains(t, out, "Relative Humidity: 74.0%")
	assert.Contains(t, out, "Opening the windows will provide 4711.48 BTU/hr of cooling.")
	assert.Contains(t, out, "Equivalent to 0.39 tons.")
	assert.NotContains(t, out, "Warning")

	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.Evaluations.WithLabelValues("cooling")))
	assert.InDelta(t, 4711.48, testutil.ToFloat64(h.metrics.LastHeatFlow), 0.01)
}

func TestEvaluator_Run_Heating(t *testing.T) {
	h := newHarness(t, "2\n50\n20\n24\n12\n2\n270\n", nil)

	ev, err := h.eval.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeHeating, ev.Result.Mode)
	assert.Less(t, ev.Result.HeatFlowBTUH, 0.0)
	assert.Equal(t, domain.UnitKilowatts, ev.Result.Unit)
	assert.Contains(t, h.out.String(), "BTU/hr of heating.")
}

func TestEvaluator_Run_UnknownStationReprompts(t *testing.T) {
	h := newHarness(t, "kxxx\n"+answersKSBY, nil)

	ev, err := h.eval.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KXXX", "KSBY"}, h.fetcher.calls)
	assert.Equal(t, "KSBY", ev.StationID)
	assert.Contains(t, h.out.String(), "No current observation for KXXX")
	assert.Equal(t, 2, strings.Count(h.out.String(), "LOCAL WEATHER OBSERVATIONS"))
}

func TestEvaluator_Run_TimeoutReprompts(t *testing.T) {
	h := newHarness(t, "4\n"+answersKSBY, nil)
	h.fetcher.errs["KOXB"] = fmt.Errorf("fetch KOXB: %w", domain.ErrFetchTimeout)

	_, err := h.eval.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"KOXB", "KSBY"}, h.fetcher.calls)
}

func TestEvaluator_Run_FetchCanceled(t *testing.T) {
	h := newHarness(t, answersKSBY, nil)
	h.fetcher.errs["KSBY"] = fmt.Errorf("fetch KSBY: %w", context.Canceled)

	_, err := h.eval.Run(context.Background())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.publisher.published)
}

func TestEvaluator_Run_IneffectiveWind(t *testing.T) {
	// A table without the report's temperatures proves no lookup happens.
	sparse, err := domain.NewSaturationTable(map[int]float64{0: 1})
	require.NoError(t, err)

	tests := []struct {
		name, answer, reason, message string
	}{
		{"variable", "5\n", domain.WindVariable, "too variable"},
		{"calm", "1\n", domain.WindCalm, "Wind is calm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.answer, sparse)

			_, err := h.eval.Run(context.Background())
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrIneffectiveWind)
			assert.NotErrorIs(t, err, domain.ErrKeyNotFound)
			assert.Equal(t, domain.ExitOK, domain.ExitCode(err))

			var windErr *domain.IneffectiveWindError
			require.True(t, errors.As(err, &windErr))
			assert.Equal(t, tt.reason, windErr.Reason)

			assert.Contains(t, h.out.String(), "Dry Bulb Temperature: 20 degrees Celsius")
			assert.Contains(t, h.out.String(), tt.message)
			assert.NotContains(t, h.out.String(), "Enter indoor")
			assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.IneffectiveWind.WithLabelValues(tt.reason)))
			assert.Empty(t, h.publisher.published)
		})
	}
}

func TestEvaluator_Run_MalformedReport(t *testing.T) {
	h := newHarness(t, "3\n", nil)
	h.fetcher.reports["KWAL"] = "2024/05/14 12:55\nKWAL 141255Z 09010KT 10SM A3000\n"

	_, err := h.eval.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrMalformedObservation)
	assert.Equal(t, domain.ExitMalformedObservation, domain.ExitCode(err))
}

func TestEvaluator_Run_KeyNotFound(t *testing.T) {
	sparse, err := domain.NewSaturationTable(map[int]float64{54: 62})
	require.NoError(t, err)
	h := newHarness(t, answersKSBY, sparse)

	_, err = h.eval.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrKeyNotFound)
	assert.Equal(t, domain.ExitKeyNotFound, domain.ExitCode(err))
}

func TestEvaluator_Run_UserExit(t *testing.T) {
	h := newHarness(t, "e\n", nil)

	_, err := h.eval.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrUserExit)
	assert.Empty(t, h.fetcher.calls)
	assert.Equal(t, domain.ExitOK, domain.ExitCode(err))
}

func TestEvaluator_Run_InputClosed(t *testing.T) {
	h := newHarness(t, "2\n72\n", nil)

	_, err := h.eval.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrInputClosed)
	assert.Equal(t, domain.ExitInputClosed, domain.ExitCode(err))
}

func TestEvaluator_Run_InterruptedAtPrompt(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	h := newHarnessFrom(t, pr, nil)
	ctx, cancel := context.WithCancel(context.Background())

	// Answer the menu and the temperature, then interrupt while the
	// humidity prompt waits on an open input.
	go func() {
		_, _ = io.WriteString(pw, "2\n72\n")
		cancel()
	}()

	errCh := make(chan error, 1)
	go func() {
		_, err := h.eval.Run(ctx)
		errCh <- err
	}()

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, domain.ExitOK, domain.ExitCode(err))
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Empty(t, h.publisher.published)
	assert.Equal(t, 0.0, testutil.ToFloat64(h.metrics.Evaluations.WithLabelValues(string(domain.ModeCooling))))
}

func TestEvaluator_Run_StaleReport(t *testing.T) {
	h := newHarness(t, answersKSBY, nil)
	domain.SetClock(clockwork.NewFakeClockAt(time.Date(2024, 5, 14, 18, 0, 0, 0, time.UTC)))

	_, err := h.eval.Run(context.Background())
	require.NoError(t, err)
	assert.Contains(t, h.out.String(), "this observation is 5h7m0s old")
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.StaleReports))
}

func TestEvaluator_Run_PublishFailureIsNotFatal(t *testing.T) {
	h := newHarness(t, answersKSBY, nil)
	h.publisher.err = errors.New("broker down")

	ev, err := h.eval.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.ModeCooling, ev.Result.Mode)
	assert.Equal(t, 1.0, testutil.ToFloat64(h.metrics.PublishErrors))
}

func TestEvaluator_Run_NoPublisher(t *testing.T) {
	table, err := domain.LoadSaturationTable(filepath.Join("..", "..", "humidityratio.csv"))
	require.NoError(t, err)

	var out bytes.Buffer
	e := evaluator.New(
		&mockFetcher{reports: map[string]string{"KSBY": reportKSBY}},
		nil,
		console.New(strings.NewReader(answersKSBY), &out),
		table,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		observability.NewMetrics(),
		2*time.Hour,
	)

	_, err = e.Run(context.Background())
	require.NoError(t, err)
}
