package table_test

import (
	"testing"

	"github.com/okian/jobchanges/internal/domain/table"
	. "github.com/smartystreets/goconvey/convey"
)

var expected = []string{"type", "company", "function", "started", "ended"}

func TestNormalize(t *testing.T) {
	Convey("Given a table missing some expected columns", t, func() {
		raw := table.Table{
			Columns: []string{"company", "extra", "type"},
			Rows: [][]table.Cell{
				{table.Text("Acme"), table.Text("x"), table.Text("departure")},
				{table.Absent(), table.Text("y"), table.Text("arrival")},
			},
		}

		Convey("When normalizing", func() {
			out := table.Normalize(raw, expected)

			Convey("Then original columns keep their order and missing ones are appended", func() {
				So(out.Columns, ShouldResemble, []string{"company", "extra", "type", "function", "started", "ended"})
			})

			Convey("And missing columns hold the absent marker", func() {
				for _, c := range out.Column("function") {
					So(c.Valid, ShouldBeFalse)
				}
				So(out.Cell(0, "ended"), ShouldResemble, table.Absent())
			})

			Convey("And existing values and the extra column pass through", func() {
				So(out.Cell(0, "company"), ShouldResemble, table.Text("Acme"))
				So(out.Cell(1, "company").Valid, ShouldBeFalse)
				So(out.Cell(1, "extra"), ShouldResemble, table.Text("y"))
			})

			Convey("And the input table is left untouched", func() {
				So(raw.Columns, ShouldResemble, []string{"company", "extra", "type"})
				So(len(raw.Rows[0]), ShouldEqual, 3)
			})

			Convey("And normalizing again yields an identical table", func() {
				again := table.Normalize(out, expected)
				So(again.Equal(out), ShouldBeTrue)
				So(again, ShouldResemble, out)
			})
		})
	})

	Convey("Given a table with zero rows and no columns", t, func() {
		raw := table.Table{}

		Convey("When normalizing", func() {
			out := table.Normalize(raw, expected)

			Convey("Then it is an empty table with the expected column set", func() {
				So(out.Columns, ShouldResemble, expected)
				So(out.Len(), ShouldEqual, 0)
				So(out.Rows, ShouldNotBeNil)
			})
		})
	})

	Convey("Given a ragged row", t, func() {
		raw := table.Table{
			Columns: []string{"type", "company"},
			Rows:    [][]table.Cell{{table.Text("departure")}},
		}

		Convey("Then the short row is padded with absent cells", func() {
			out := table.Normalize(raw, expected)
			So(len(out.Rows[0]), ShouldEqual, len(out.Columns))
			So(out.Cell(0, "company").Valid, ShouldBeFalse)
			So(out.Cell(0, "type"), ShouldResemble, table.Text("departure"))
		})
	})
}

func TestMissing(t *testing.T) {
	Convey("Given a partial table", t, func() {
		raw := table.Empty("started", "type")

		Convey("Then Missing lists absent expected columns in expected order", func() {
			So(table.Missing(raw, expected), ShouldResemble, []string{"company", "function", "ended"})
			So(table.Missing(table.Normalize(raw, expected), expected), ShouldBeEmpty)
		})
	})
}

func TestTableAccessors(t *testing.T) {
	Convey("Given a small table", t, func() {
		tbl := table.Table{
			Columns: []string{"a", "b"},
			Rows:    [][]table.Cell{{table.Text("1"), table.Text("2")}},
		}

		Convey("Then lookups outside the table yield the absent marker", func() {
			So(tbl.Cell(5, "a").Valid, ShouldBeFalse)
			So(tbl.Cell(0, "zzz").Valid, ShouldBeFalse)
			So(tbl.Index("b"), ShouldEqual, 1)
			So(tbl.Index("zzz"), ShouldEqual, -1)
		})

		Convey("And a clone is independent of the original", func() {
			c := tbl.Clone()
			c.Rows[0][0] = table.Text("changed")
			c.Columns[1] = "changed"
			So(tbl.Cell(0, "a"), ShouldResemble, table.Text("1"))
			So(tbl.Columns[1], ShouldEqual, "b")
			So(c.Equal(tbl), ShouldBeFalse)
		})
	})
}
