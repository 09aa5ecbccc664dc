package server

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"

	"github.com/Erm2130/buu-api/internal/models"
	"github.com/Erm2130/buu-api/internal/store"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportTimetable serves the stored timetable as an .xlsx download.
func (h *Handler) ExportTimetable(c echo.Context) error {
	username := c.Param("username")
	rec, err := h.store.Get(c.Request().Context(), username)
	if errors.Is(err, store.ErrNotFound) {
		return respondError(c, http.StatusNotFound, "not_found",
			"ยังไม่มีตารางเรียนของผู้ใช้นี้ (no stored timetable for this user)")
	}
	if err != nil {
		log.Printf("⚠️ อ่านข้อมูลของ %s ไม่สำเร็จ: %v", username, err)
		return respondError(c, http.StatusInternalServerError, "store_error",
			"อ่านข้อมูลไม่สำเร็จ (failed to read the record)")
	}

	buf, err := buildTimetableWorkbook(rec)
	if err != nil {
		log.Printf("⚠️ สร้างไฟล์ Excel ของ %s ไม่สำเร็จ: %v", username, err)
		return respondError(c, http.StatusInternalServerError, "export_error",
			"สร้างไฟล์ Excel ไม่สำเร็จ (failed to build the workbook)")
	}

	filename := fmt.Sprintf("timetable_%s.xlsx", username)
	c.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, xlsxContentType, buf.Bytes())
}

// buildTimetableWorkbook lays the record out one session per row.
func buildTimetableWorkbook(rec *models.UserRecord) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "ตารางเรียน"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheet, "A", "A", 16)
	f.SetColWidth(sheet, "B", "B", 40)
	f.SetColWidth(sheet, "C", "C", 12)
	f.SetColWidth(sheet, "D", "D", 14)
	f.SetColWidth(sheet, "E", "E", 12)
	f.SetColWidth(sheet, "F", "F", 30)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, err
	}

	f.SetCellValue(sheet, "A1", fmt.Sprintf("ตารางเรียนของ %s", rec.Username))
	f.MergeCell(sheet, "A1", "F1")
	f.SetCellStyle(sheet, "A1", "A1", headerStyle)

	headers := []string{"รหัสวิชา", "ชื่อวิชา", "วัน", "เวลา", "ห้อง", "อาคาร"}
	for i, title := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheet, fmt.Sprintf("%s2", col), title)
		f.SetCellStyle(sheet, fmt.Sprintf("%s2", col), fmt.Sprintf("%s2", col), headerStyle)
	}

	row := 3
	for _, course := range rec.Schedule {
		name := course.NameTH
		if name == "" {
			name = course.NameEN
		}
		for _, s := range course.Sessions {
			f.SetCellValue(sheet, fmt.Sprintf("A%d", row), course.Code)
			f.SetCellValue(sheet, fmt.Sprintf("B%d", row), name)
			f.SetCellValue(sheet, fmt.Sprintf("C%d", row), s.Day)
			f.SetCellValue(sheet, fmt.Sprintf("D%d", row), s.Time)
			f.SetCellValue(sheet, fmt.Sprintf("E%d", row), s.Room)
			f.SetCellValue(sheet, fmt.Sprintf("F%d", row), s.Building)
			row++
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf, nil
}
