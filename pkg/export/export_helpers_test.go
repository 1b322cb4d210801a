package export

import (
	"testing"
	"time"

	"github.com/vanderheijden86/tremorview/pkg/chart"
	"github.com/vanderheijden86/tremorview/pkg/loader"
	"github.com/vanderheijden86/tremorview/pkg/model"
)

var t0 = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

func testController(t *testing.T) *chart.Controller {
	t.Helper()
	store := loader.NewStore([]model.Record{
		{Condition: "ET", TaskName: "Relaxed", TremorSeverity: 0.4, Age: model.Some(61), Height: model.Some(172)},
		{Condition: "ET", TaskName: "TouchNose", TremorSeverity: 0.8, Age: model.Some(65)},
		{Condition: "PD", TaskName: "Relaxed", TremorSeverity: 1.2, AgeAtDiagnosis: model.Some(58)},
		{Condition: "HC & <ctl>", TaskName: "Relaxed", TremorSeverity: 0.1},
	})
	c := chart.New(store, chart.Options{})
	c.Render(t0)
	return c
}

// settled returns a frame long after every transition has finished.
func settled(c *chart.Controller) chart.Frame {
	later := t0.Add(time.Hour)
	c.Tick(later)
	return c.Frame(later)
}
