package ranking_test

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/okian/jobchanges/internal/domain/model"
	"github.com/okian/jobchanges/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func departure(company, function string) model.Record {
	r := model.Record{Type: model.Some(model.Departure)}
	if company != "" {
		r.Company = model.Some(company)
	}
	if function != "" {
		r.Function = model.Some(function)
	}
	return r
}

func TestRank(t *testing.T) {
	Convey("Given three departures from two companies", t, func() {
		records := []model.Record{
			departure("Acme", ""),
			departure("Acme", ""),
			departure("Globex", ""),
		}

		Convey("When ranking the top 2 companies", func() {
			got := ranking.Rank(records, model.Departure, ranking.FieldCompany, 2)

			Convey("Then entries are ascending by count with the largest last", func() {
				want := []ranking.Entry{{Label: "Globex", Count: 1}, {Label: "Acme", Count: 2}}
				So(cmp.Diff(want, got.Entries), ShouldBeEmpty)
				So(got.Empty, ShouldBeFalse)
			})
		})
	})

	Convey("Given equal counts", t, func() {
		records := []model.Record{
			departure("Initech", ""),
			departure("Globex", ""),
			departure("Acme", ""),
			departure("Umbrella", ""),
			departure("Umbrella", ""),
		}

		Convey("When the cut falls inside a tie", func() {
			got := ranking.Rank(records, model.Departure, ranking.FieldCompany, 3)

			Convey("Then earlier labels win the tie and ties render by label", func() {
				want := []ranking.Entry{
					{Label: "Acme", Count: 1},
					{Label: "Globex", Count: 1},
					{Label: "Umbrella", Count: 2},
				}
				So(cmp.Diff(want, got.Entries), ShouldBeEmpty)
			})
		})

		Convey("When ranking repeatedly", func() {
			first := ranking.Rank(records, model.Departure, ranking.FieldCompany, 4)

			Convey("Then the output is identical every time", func() {
				for i := 0; i < 20; i++ {
					So(ranking.Rank(records, model.Departure, ranking.FieldCompany, 4), ShouldResemble, first)
				}
			})
		})
	})

	Convey("Given mixed record types and absent labels", t, func() {
		records := []model.Record{
			departure("Acme", "Engineering"),
			departure("", "Engineering"),
			departure("Acme", ""),
			{Type: model.Some(model.Arrival), Company: model.Some("Acme"), Function: model.Some("Sales")},
			{Type: model.Some(model.RecordType("garbled")), Company: model.Some("Acme"), Function: model.Some("Sales")},
			{Company: model.Some("Acme")},
		}

		Convey("Then only departures with a present value are counted", func() {
			companies := ranking.Rank(records, model.Departure, ranking.FieldCompany, 5)
			So(companies.Entries, ShouldResemble, []ranking.Entry{{Label: "Acme", Count: 2}})

			functions := ranking.Rank(records, model.Departure, ranking.FieldFunction, 5)
			So(functions.Entries, ShouldResemble, []ranking.Entry{{Label: "Engineering", Count: 2}})
		})

		Convey("And arrivals can be ranked the same way", func() {
			got := ranking.Rank(records, model.Arrival, ranking.FieldFunction, 5)
			So(got.Entries, ShouldResemble, []ranking.Entry{{Label: "Sales", Count: 1}})
		})
	})

	Convey("Given many distinct labels", t, func() {
		var records []model.Record
		for i := 0; i < 40; i++ {
			for j := 0; j <= i%7; j++ {
				records = append(records, departure(fmt.Sprintf("company-%02d", i), ""))
			}
		}

		Convey("Then the result never exceeds topN and never over-counts", func() {
			for _, n := range []int{1, 2, 5, 10, 39, 40, 100} {
				got := ranking.Rank(records, model.Departure, ranking.FieldCompany, n)
				So(len(got.Entries), ShouldBeLessThanOrEqualTo, n)
				So(got.Total(), ShouldBeLessThanOrEqualTo, len(records))
				for i := 1; i < len(got.Entries); i++ {
					So(got.Entries[i-1].Count, ShouldBeLessThanOrEqualTo, got.Entries[i].Count)
				}
			}
		})
	})

	Convey("Given no qualifying records", t, func() {
		Convey("Then an explicit empty result is returned", func() {
			for _, records := range [][]model.Record{
				nil,
				{},
				{departure("", "")},
				{{Type: model.Some(model.Arrival), Company: model.Some("Acme")}},
			} {
				got := ranking.Rank(records, model.Departure, ranking.FieldCompany, 5)
				So(got.Empty, ShouldBeTrue)
				So(got.Entries, ShouldNotBeNil)
				So(got.Entries, ShouldBeEmpty)
			}
		})
	})

	Convey("Given a non-positive topN", t, func() {
		records := []model.Record{departure("Acme", "")}

		Convey("Then the result is empty", func() {
			So(ranking.Rank(records, model.Departure, ranking.FieldCompany, 0).Empty, ShouldBeTrue)
			So(ranking.Rank(records, model.Departure, ranking.FieldCompany, -3).Empty, ShouldBeTrue)
		})
	})
}

func TestField(t *testing.T) {
	Convey("Given rankable fields", t, func() {
		Convey("Then they name their source columns", func() {
			So(ranking.FieldCompany.String(), ShouldEqual, model.ColumnCompany)
			So(ranking.FieldFunction.String(), ShouldEqual, model.ColumnFunction)
			So(ranking.Field(99).String(), ShouldEqual, "unknown")
		})
	})
}
