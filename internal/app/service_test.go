package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	service "github.com/okian/jobchanges/internal/app"
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/pipeline"
	"github.com/okian/jobchanges/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

// fakeLoader serves a configurable table and counts loads.
type fakeLoader struct {
	mu    sync.Mutex
	tbl   table.Table
	src   model.Source
	err   error
	loads int
}

func (f *fakeLoader) Load(context.Context) (table.Table, model.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.err != nil {
		return table.Table{}, model.Source{}, f.err
	}
	return f.tbl, f.src, nil
}

func (f *fakeLoader) set(tbl table.Table, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tbl, f.err = tbl, err
}

func (f *fakeLoader) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loads
}

func departures(companies ...string) table.Table {
	t := table.Empty(model.ColumnType, model.ColumnCompany, model.ColumnDepartureEnd)
	for _, c := range companies {
		t.Rows = append(t.Rows, []table.Cell{
			table.Text("departure"), table.Text(c), table.Text("2025-01-10T00:00:00Z"),
		})
	}
	return t
}

func sequentialIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func TestService_New(t *testing.T) {
	Convey("Given a new service with default options", t, func() {
		svc := service.New()

		Convey("Then it should have sensible defaults", func() {
			So(svc, ShouldNotBeNil)
			So(svc.Defaults(), ShouldResemble, pipeline.Params{TopN: 5, TargetYear: 2025})
			So(svc.MaxTopN(), ShouldEqual, 100)
		})
	})

	Convey("Given a new service with custom options", t, func() {
		svc := service.New(
			service.WithDefaults(10, 2024),
			service.WithMaxTopN(20),
			service.WithCacheSize(4),
			service.WithDataPath("elsewhere.csv"),
		)

		Convey("Then the options are applied", func() {
			So(svc.Defaults(), ShouldResemble, pipeline.Params{TopN: 10, TargetYear: 2024})
			So(svc.MaxTopN(), ShouldEqual, 20)
		})
	})
}

func TestService_StartStop(t *testing.T) {
	Convey("Given a service over a valid source", t, func() {
		fl := &fakeLoader{tbl: departures("Acme"), src: model.Source{Path: "data.csv"}}
		svc := service.New(service.WithLoader(fl))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		Convey("When starting the service", func() {
			err := svc.Start(ctx)
			defer svc.Stop()

			Convey("Then it loads once and is marked as started", func() {
				So(err, ShouldBeNil)
				So(fl.count(), ShouldEqual, 1)
				st := svc.GetStats()
				So(st.Started, ShouldBeTrue)
				So(st.Version, ShouldEqual, 1)
				So(st.Records.Departures, ShouldEqual, 1)
				So(st.Reloads, ShouldEqual, 1)
			})

			Convey("And starting again is a no-op", func() {
				So(svc.Start(ctx), ShouldBeNil)
				So(fl.count(), ShouldEqual, 1)
			})
		})

		Convey("When stopping the service", func() {
			So(svc.Start(ctx), ShouldBeNil)
			svc.Stop()

			Convey("Then it should be marked as stopped", func() {
				So(svc.GetStats().Started, ShouldBeFalse)
			})
		})
	})

	Convey("Given a service over a corrupt source", t, func() {
		boom := errors.New("corrupt")
		svc := service.New(service.WithLoader(&fakeLoader{err: boom}))

		Convey("Then start fails with the load error", func() {
			err := svc.Start(context.Background())
			So(errors.Is(err, boom), ShouldBeTrue)
			So(svc.GetStats().Started, ShouldBeFalse)
		})
	})
}

func TestService_Report(t *testing.T) {
	Convey("Given a started service", t, func() {
		fl := &fakeLoader{tbl: departures("Acme", "Acme", "Globex"), src: model.Source{Path: "data.csv"}}
		svc := service.New(service.WithLoader(fl), service.WithIDGenerator(sequentialIDs()), service.WithMaxTopN(10))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a report is requested with defaults", func() {
			rep, err := svc.Report(ctx, pipeline.Params{})

			Convey("Then it is computed with the default parameters", func() {
				So(err, ShouldBeNil)
				So(rep.Params, ShouldResemble, pipeline.Params{TopN: 5, TargetYear: 2025})
				So(rep.Companies.Entries[len(rep.Companies.Entries)-1].Label, ShouldEqual, "Acme")
				So(rep.Version, ShouldEqual, 1)
				So(rep.Source.Path, ShouldEqual, "data.csv")
				So(rep.RunID, ShouldNotBeEmpty)
			})

			Convey("And the same parameters hit the cache", func() {
				again, err := svc.Report(ctx, pipeline.Params{TopN: 5, TargetYear: 2025})
				So(err, ShouldBeNil)
				So(again, ShouldEqual, rep)
				So(svc.GetStats().CacheEntries, ShouldEqual, 1)
			})

			Convey("And different parameters are computed separately", func() {
				other, err := svc.Report(ctx, pipeline.Params{TopN: 1})
				So(err, ShouldBeNil)
				So(other, ShouldNotEqual, rep)
				So(other.Companies.Entries, ShouldHaveLength, 1)
			})
		})

		Convey("When the source changes and is reloaded", func() {
			before, err := svc.Report(ctx, pipeline.Params{})
			So(err, ShouldBeNil)
			fl.set(departures("Initech"), nil)
			So(svc.Reload(ctx, model.ReloadAPI), ShouldBeNil)
			after, err := svc.Report(ctx, pipeline.Params{})
			So(err, ShouldBeNil)

			Convey("Then the cache is invalidated and the new data is served", func() {
				So(after, ShouldNotEqual, before)
				So(after.Version, ShouldEqual, 2)
				So(after.Companies.Entries[0].Label, ShouldEqual, "Initech")
			})
		})

		Convey("When a reload fails", func() {
			fl.set(table.Table{}, errors.New("io failure"))
			err := svc.Reload(ctx, model.ReloadWatch)

			Convey("Then the previous snapshot keeps serving", func() {
				So(err, ShouldNotBeNil)
				rep, err := svc.Report(ctx, pipeline.Params{})
				So(err, ShouldBeNil)
				So(rep.Version, ShouldEqual, 1)
				st := svc.GetStats()
				So(st.ReloadFailures, ShouldEqual, 1)
				So(st.LastReloadError, ShouldContainSubstring, "io failure")
			})
		})

		Convey("When parameters are out of range", func() {
			_, errTop := svc.Report(ctx, pipeline.Params{TopN: 11})
			_, errNeg := svc.Report(ctx, pipeline.Params{TopN: -1})
			_, errYear := svc.Report(ctx, pipeline.Params{TargetYear: 10000})

			Convey("Then ErrInvalidParams is returned", func() {
				So(errors.Is(errTop, service.ErrInvalidParams), ShouldBeTrue)
				So(errors.Is(errNeg, service.ErrInvalidParams), ShouldBeTrue)
				So(errors.Is(errYear, service.ErrInvalidParams), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that was never started", t, func() {
		svc := service.New(service.WithLoader(&fakeLoader{}))

		Convey("Then reports are unavailable", func() {
			_, err := svc.Report(context.Background(), pipeline.Params{})
			So(errors.Is(err, service.ErrNotStarted), ShouldBeTrue)
		})
	})
}

func TestService_RequestReload(t *testing.T) {
	Convey("Given a started service", t, func() {
		fl := &fakeLoader{tbl: departures("Acme")}
		svc := service.New(service.WithLoader(fl))
		ctx := context.Background()
		So(svc.Start(ctx), ShouldBeNil)
		defer svc.Stop()

		Convey("When a reload is requested", func() {
			fl.set(departures("Acme", "Globex"), nil)
			ack, err := svc.RequestReload(ctx, model.ReloadAPI)

			Convey("Then it is accepted and eventually applied by the worker", func() {
				So(err, ShouldBeNil)
				So(ack.Status, ShouldEqual, "accepted")
				So(ack.RequestID, ShouldNotBeEmpty)

				deadline := time.Now().Add(2 * time.Second)
				for svc.GetStats().Version < 2 && time.Now().Before(deadline) {
					time.Sleep(10 * time.Millisecond)
				}
				So(svc.GetStats().Version, ShouldEqual, 2)
				rep, err := svc.Report(ctx, pipeline.Params{})
				So(err, ShouldBeNil)
				So(rep.Stats.Departures, ShouldEqual, 2)
			})
		})

		Convey("When the service is stopped", func() {
			svc.Stop()

			Convey("Then reload requests are rejected", func() {
				_, err := svc.RequestReload(ctx, model.ReloadAPI)
				So(err, ShouldNotBeNil)
			})
		})
	})
}
