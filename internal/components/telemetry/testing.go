package telemetry

import (
	"fmt"
	"strings"
	"sync"
	"testing"
)

type Report struct {
	Id     string
	Params []any
}

func formatTestParams(params []any) string {
	return strings.TrimSuffix(fmt.Sprintln(params...), "\n")
}

// TestingAPI logs reports to the test log and keeps them around for assertions.
type TestingAPI struct {
	t testing.TB

	mutex    sync.Mutex
	broken   []Report
	warnings []Report
	counts   map[string]int64
}

func NewTestingAPI(t testing.TB) *TestingAPI {
	return &TestingAPI{t: t, counts: map[string]int64{}}
}

func (a *TestingAPI) ReportBroken(id string, params ...any) {
	a.t.Log("BROKEN", id, formatTestParams(params))
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.broken = append(a.broken, Report{Id: id, Params: params})
}

func (a *TestingAPI) ReportWarning(id string, params ...any) {
	a.t.Log("WARN", id, formatTestParams(params))
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.warnings = append(a.warnings, Report{Id: id, Params: params})
}

func (a *TestingAPI) ReportDebug(msg string, params ...any) {
	a.t.Log("DEBUG", msg, formatTestParams(params))
}

func (a *TestingAPI) ReportCount(id string, count int64) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	a.counts[id] = count
}

func (a *TestingAPI) Broken() []Report {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]Report(nil), a.broken...)
}

func (a *TestingAPI) Warnings() []Report {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	return append([]Report(nil), a.warnings...)
}

func (a *TestingAPI) Count(id string) (int64, bool) {
	a.mutex.Lock()
	defer a.mutex.Unlock()
	n, ok := a.counts[id]
	return n, ok
}
