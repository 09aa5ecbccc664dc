package scraper

import (
	"reflect"
	"testing"
)

const legendPage = `
<html><body>
<table id="myTable" class="table">
  <tbody>
    <tr><td colspan="2">รายวิชา</td></tr>
    <tr>
      <td>88634259-59</td>
      <td><font color="#000000">DATABASE SYSTEMS I<br>ระบบฐานข้อมูล 1</font></td>
    </tr>
    <tr>
      <td>26565656-60</td>
      <td>ENGLISH FOR COMMUNICATION<br>ภาษาอังกฤษเพื่อการสื่อสาร<br>3(3-0-6)</td>
    </tr>
    <tr>
      <td></td>
      <td>ORPHAN ROW<br>แถวกำพร้า</td>
    </tr>
    <tr>
      <td>99999999-99</td>
      <td>SEMINAR</td>
    </tr>
    <tr>
      <td>88634259-59</td>
      <td>DATABASE SYSTEMS I (REVISED)<br>ระบบฐานข้อมูล 1 (ปรับปรุง)</td>
    </tr>
  </tbody>
</table>
</body></html>`

// gridPage mirrors the portal's layout: the weekday table sits four tables
// deep below #page with no ids of its own, and the left column holds a
// decoy table that a descendant selector would pick up.
const gridPage = `
<html><body>
<div id="page">
  <table><tbody><tr><td>header</td></tr></tbody></table>
  <table><tbody><tr><td>menu</td></tr></tbody></table>
  <table>
    <tbody>
      <tr>
        <td>
          <table><tbody><tr><td>อังคารปลอม</td><td>decoy</td></tr></tbody></table>
        </td>
        <td>
          <table><tbody><tr><td>toolbar</td></tr></tbody></table>
          <table><tbody><tr><td>banner</td></tr></tbody></table>
          <table>
            <tbody>
              <tr>
                <td>
                  <table>
                    <tbody>
                      <tr><td colspan="4">ตารางเรียน ภาคต้น</td></tr>
                      <tr><td>วัน/เวลา</td><td>09:00-12:00</td><td>13:00-16:00</td><td>16:00-19:00</td></tr>
                      <tr>
                        <td>จันทร์</td>
                        <td><font size="2">88634259-59 <br>(1)<br> IF-3C01<br>(09:00-12:00)</font></td>
                        <td>&nbsp;</td>
                      </tr>
                      <tr><td>&nbsp;</td><td>&nbsp;</td><td>&nbsp;</td></tr>
                      <tr>
                        <td> อังคาร </td>
                        <td>26565656-60<br>(2)<br>QS2-605<br>(13:00-16:00)</td>
                        <td>26565656-60<br>(2)<br>QS2-605<br>(13:00-16:00)</td>
                        <td>31235959-62<br>(1)</td>
                      </tr>
                    </tbody>
                  </table>
                </td>
              </tr>
            </tbody>
          </table>
        </td>
      </tr>
    </tbody>
  </table>
</div>
</body></html>`

func TestParseLegend(t *testing.T) {
	legend, err := ParseLegend([]byte(legendPage))
	if err != nil {
		t.Fatalf("ParseLegend: %v", err)
	}
	if len(legend) != 3 {
		t.Fatalf("got %d legend entries, want 3: %v", len(legend), legend)
	}

	db, ok := legend["88634259-59"]
	if !ok {
		t.Fatal("missing entry for 88634259-59")
	}
	if db.NameEN != "DATABASE SYSTEMS I (REVISED)" {
		t.Errorf("duplicate code should keep the last row, got NameEN %q", db.NameEN)
	}

	en := legend["26565656-60"]
	if en.NameEN != "ENGLISH FOR COMMUNICATION" || en.NameTH != "ภาษาอังกฤษเพื่อการสื่อสาร" {
		t.Errorf("unexpected names for 26565656-60: %+v", en)
	}

	sem := legend["99999999-99"]
	if sem.NameEN != "SEMINAR" || sem.NameTH != "" {
		t.Errorf("single-line cell should leave NameTH empty, got %+v", sem)
	}

	if _, ok := legend[""]; ok {
		t.Error("row with empty code must be skipped")
	}
}

func TestParseGrid(t *testing.T) {
	rows, err := ParseGrid([]byte(gridPage))
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d day rows, want 2 (spacer dropped): %+v", len(rows), rows)
	}

	mon := rows[0]
	if mon.Day != "จันทร์" {
		t.Errorf("got day %q, want จันทร์", mon.Day)
	}
	wantMon := [][]string{{"88634259-59", "(1)", "IF-3C01", "(09:00-12:00)"}}
	if !reflect.DeepEqual(mon.Columns, wantMon) {
		t.Errorf("monday columns = %v, want %v", mon.Columns, wantMon)
	}

	tue := rows[1]
	if tue.Day != "อังคาร" {
		t.Errorf("day label should be trimmed, got %q", tue.Day)
	}
	if len(tue.Columns) != 3 {
		t.Fatalf("got %d tuesday slots, want 3 (parser keeps duplicates): %v", len(tue.Columns), tue.Columns)
	}
	wantShort := []string{"31235959-62", "(1)"}
	if !reflect.DeepEqual(tue.Columns[2], wantShort) {
		t.Errorf("short slot = %v, want %v", tue.Columns[2], wantShort)
	}

	for _, row := range rows {
		if row.Day == "อังคารปลอม" {
			t.Fatal("decoy table outside the grid path must not be parsed")
		}
	}
}

func TestParseGridMissingRegion(t *testing.T) {
	rows, err := ParseGrid([]byte(`<html><body><p>no tables here</p></body></html>`))
	if err != nil {
		t.Fatalf("ParseGrid: %v", err)
	}
	if len(rows) != 0 {
		t.Errorf("got %d rows from an empty page, want 0", len(rows))
	}
}
