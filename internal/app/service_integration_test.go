package service_test

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	service "github.com/okian/jobchanges/internal/app"
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/internal/domain/series"
	"github.com/okian/jobchanges/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

const changesCSV = `arrival/departure,previous_job.company.name,previous_job.function,current_job.started_at,previous_job.ended_at
departure,Acme,Sales,,2025-01-10T00:00:00Z
departure,Acme,Engineering,,2025-01-11T08:30:00+05:00
departure,Globex,Sales,,2025-01-12
arrival,Initech,Sales,2025-03-04T10:00:00+01:00,
departure,Initech,Sales,,2025-03-09T22:00:00-08:00
arrival,Hooli,,,2025-03-05T00:00:00Z
departure,Umbrella,Sales,,not a date
departure,Acme,Sales,,2024-06-01
`

func TestServiceIntegration(t *testing.T) {
	Convey("Given a service over a CSV file", t, func() {
		path := filepath.Join(t.TempDir(), "changes.csv")
		So(os.WriteFile(path, []byte(changesCSV), 0o600), ShouldBeNil)
		svc := service.New(service.WithDataPath(path))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When the default report is requested", func() {
			rep, err := svc.Report(ctx, pipeline.Params{})
			So(err, ShouldBeNil)
			view := rep.View()

			Convey("Then companies are ranked by departures, ascending", func() {
				labels := make([]string, 0, len(view.Companies.Entries))
				for _, e := range view.Companies.Entries {
					labels = append(labels, e.Label)
				}
				So(labels, ShouldResemble, []string{"Globex", "Initech", "Umbrella", "Acme"})
				So(view.Companies.Entries[3].Count, ShouldEqual, 3)
			})

			Convey("And functions are ranked by departures", func() {
				last := view.Functions.Entries[len(view.Functions.Entries)-1]
				So(last.Label, ShouldEqual, "Sales")
				So(last.Count, ShouldEqual, 5)
			})

			Convey("And the weekly series pairs arrivals with departures per 2025 week", func() {
				So(view.Weekly.Types, ShouldResemble, []string{"arrival", "departure"})
				So(view.Weekly.Points, ShouldResemble, []types.PointView{
					{Week: "2025-01-06", Type: "arrival", Count: 0},
					{Week: "2025-01-06", Type: "departure", Count: 3},
					{Week: "2025-03-03", Type: "arrival", Count: 1},
					{Week: "2025-03-03", Type: "departure", Count: 1},
				})
			})

			Convey("And the stats account for every record", func() {
				So(view.Stats, ShouldResemble, pipeline.Stats{
					Records: 8, Arrivals: 2, Departures: 6, MissingEventTime: 2,
				})
				So(view.SourceMissing, ShouldBeFalse)
			})
		})

		Convey("When another year is requested", func() {
			rep, err := svc.Report(ctx, pipeline.Params{TargetYear: 2024})
			So(err, ShouldBeNil)

			Convey("Then only that year's weeks appear", func() {
				So(rep.Weekly.Points, ShouldResemble, []series.Point{
					{WeekStart: time.Date(2024, 5, 27, 0, 0, 0, 0, time.UTC), Type: "departure", Count: 1},
				})
			})
		})

		Convey("When the file is rewritten and a reload is requested", func() {
			So(os.WriteFile(path, []byte("arrival/departure,previous_job.company.name\ndeparture,Wayne\n"), 0o600), ShouldBeNil)
			So(svc.Reload(ctx, model.ReloadAPI), ShouldBeNil)
			rep, err := svc.Report(ctx, pipeline.Params{})
			So(err, ShouldBeNil)

			Convey("Then the new data is served and missing columns are reported", func() {
				So(rep.Companies.Entries, ShouldHaveLength, 1)
				So(rep.Companies.Entries[0].Label, ShouldEqual, "Wayne")
				So(rep.Weekly.Empty, ShouldBeTrue)
				So(svc.GetStats().MissingColumns, ShouldResemble, []string{
					model.ColumnFunction, model.ColumnArrivalStart, model.ColumnDepartureEnd,
				})
			})
		})

		Convey("When the file is corrupted and reloaded", func() {
			So(os.WriteFile(path, []byte("a,b\n\"broken\n"), 0o600), ShouldBeNil)
			err := svc.Reload(ctx, model.ReloadWatch)

			Convey("Then the previous snapshot keeps serving", func() {
				So(err, ShouldNotBeNil)
				rep, err := svc.Report(ctx, pipeline.Params{})
				So(err, ShouldBeNil)
				So(rep.Stats.Records, ShouldEqual, 8)
			})
		})
	})
}

func TestServiceMissingSource(t *testing.T) {
	Convey("Given a service whose data file does not exist", t, func() {
		path := filepath.Join(t.TempDir(), "absent.csv")
		svc := service.New(service.WithDataPath(path))
		ctx := context.Background()

		Convey("When started", func() {
			So(svc.Start(ctx), ShouldBeNil)
			defer svc.Stop()
			rep, err := svc.Report(ctx, pipeline.Params{})
			So(err, ShouldBeNil)
			view := rep.View()

			Convey("Then every output is empty and flagged", func() {
				So(view.SourceMissing, ShouldBeTrue)
				So(view.Notice, ShouldEqual, "Data file not found: "+path)
				So(view.Companies.Empty, ShouldBeTrue)
				So(view.Companies.Message, ShouldEqual, types.MessageNoData)
				So(view.Functions.Empty, ShouldBeTrue)
				So(view.Weekly.Empty, ShouldBeTrue)
				So(view.Weekly.Message, ShouldEqual, "No data available for 2025")
			})

			Convey("And the file appearing later is picked up by a reload", func() {
				So(os.WriteFile(path, []byte(changesCSV), 0o600), ShouldBeNil)
				So(svc.Reload(ctx, model.ReloadWatch), ShouldBeNil)
				rep, err := svc.Report(ctx, pipeline.Params{})
				So(err, ShouldBeNil)
				So(rep.Source.Missing, ShouldBeFalse)
				So(rep.Companies.Empty, ShouldBeFalse)
			})
		})
	})
}

func TestServiceConcurrency(t *testing.T) {
	Convey("Given concurrent readers and reloads", t, func() {
		path := filepath.Join(t.TempDir(), "changes.csv")
		So(os.WriteFile(path, []byte(changesCSV), 0o600), ShouldBeNil)
		svc := service.New(service.WithDataPath(path))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		var wg sync.WaitGroup
		errs := make(chan error, 100)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				for j := 0; j < 20; j++ {
					if _, err := svc.Report(ctx, pipeline.Params{TopN: 1 + (i+j)%5}); err != nil {
						errs <- err
						return
					}
				}
			}(i)
		}
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				if err := svc.Reload(ctx, model.ReloadAPI); err != nil {
					errs <- err
				}
			}()
		}
		wg.Wait()
		close(errs)

		Convey("Then every call succeeds and the cache matches the last snapshot", func() {
			for err := range errs {
				So(err, ShouldBeNil)
			}
			st := svc.GetStats()
			So(st.Version, ShouldEqual, 6)
			rep, err := svc.Report(ctx, pipeline.Params{})
			So(err, ShouldBeNil)
			So(rep.Version, ShouldEqual, 6)
		})
	})
}
