package statsservice

import (
	"bytes"
	"context"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

var (
	chartBackground = drawing.ColorFromHex("ffffff")
	chartLine       = drawing.ColorFromHex("2d6a4f")
	chartDot        = drawing.ColorFromHex("d4a017")
	chartText       = drawing.ColorFromHex("1b1b1b")
)

// TrendChart renders a member's cumulative balance over time as a PNG
// line chart. One data point per session, oldest first.
func (s *StatsService) TrendChart(ctx context.Context, member string) ([]byte, error) {
	return withTelemetry(s, ctx, "TrendChart", func(ctx context.Context) ([]byte, error) {
		sessions, err := s.memberSessions(ctx, member)
		if err != nil {
			return nil, err
		}
		if len(sessions) == 0 {
			return renderNoDataPlaceholder()
		}

		xValues := make([]time.Time, len(sessions))
		yValues := make([]float64, len(sessions))

		running := 0
		for i := range sessions {
			session := &sessions[i]
			balances := sessionFinalBalances(session)
			running += balances[memberIndex(session.Members, member)]
			xValues[i] = session.Date
			yValues[i] = float64(running)
		}

		// go-chart needs a nonzero x-range, so a lone session gets a
		// zero anchor the day before.
		if len(sessions) == 1 {
			xValues = append([]time.Time{sessions[0].Date.AddDate(0, 0, -1)}, xValues...)
			yValues = append([]float64{0}, yValues...)
		}

		mainSeries := chart.TimeSeries{
			Name:    "Balance",
			XValues: xValues,
			YValues: yValues,
			Style: chart.Style{
				StrokeColor: chartLine,
				StrokeWidth: 2,
				DotWidth:    4,
				DotColor:    chartDot,
			},
		}

		graph := chart.Chart{
			Width:  800,
			Height: 400,
			Background: chart.Style{
				FillColor: chartBackground,
			},
			Canvas: chart.Style{
				FillColor: chartBackground,
			},
			XAxis: chart.XAxis{
				Name:           "Date",
				ValueFormatter: chart.TimeValueFormatterWithFormat("2006-01-02"),
				Style: chart.Style{
					FontColor: chartText,
				},
			},
			YAxis: chart.YAxis{
				Name: "Balance",
				Style: chart.Style{
					FontColor: chartText,
				},
			},
			Series: []chart.Series{mainSeries},
		}

		buffer := bytes.NewBuffer([]byte{})
		if err := graph.Render(chart.PNG, buffer); err != nil {
			return nil, err
		}
		return buffer.Bytes(), nil
	})
}

func renderNoDataPlaceholder() ([]byte, error) {
	const (
		width  = 400
		height = 200
		msg    = "No sessions found"
	)

	graph := chart.Chart{
		Width:  width,
		Height: height,
		Background: chart.Style{
			FillColor: chartBackground,
		},
		Canvas: chart.Style{
			FillColor: chartBackground,
		},
		Elements: []chart.Renderable{
			func(r chart.Renderer, cb chart.Box, chartDefaults chart.Style) {
				r.SetFontColor(chartText)
				r.SetFontSize(12.0)
				tb := r.MeasureText(msg)
				x := (cb.Width() - tb.Width()) / 2
				y := (cb.Height() + tb.Height()) / 2
				r.Text(msg, x, y)
			},
		},
	}
	buffer := bytes.NewBuffer([]byte{})
	if err := graph.Render(chart.PNG, buffer); err != nil {
		return nil, err
	}
	return buffer.Bytes(), nil
}
