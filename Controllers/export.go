package Controllers

import (
	"bytes"
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"

	"RiderBross/Models"
)

// ServiceRow is a service header flattened for tables and exports.
type ServiceRow struct {
	ID          uint   `json:"id"`
	Plate       string `json:"plate"`
	BrandModel  string `json:"brand_model"`
	ClientName  string `json:"client_name"`
	ServiceDate string `json:"service_date"`
	Km          int64  `json:"km"`
	Rating      *int   `json:"rating"`
}

func toServiceRow(s Models.Service) ServiceRow {
	row := ServiceRow{
		ID:          s.ID,
		ServiceDate: time.Time(s.ServiceDate).Format("2006-01-02"),
		Km:          s.Km,
		Rating:      s.Rating,
	}
	if s.Vehicle != nil {
		row.Plate = s.Vehicle.Plate
		brand := ""
		if s.Vehicle.Brand != nil {
			brand = s.Vehicle.Brand.Description
		}
		model := ""
		if s.Vehicle.ModelName != nil {
			model = *s.Vehicle.ModelName
		}
		row.BrandModel = trimJoin(brand, model)
	}
	if s.Client != nil {
		row.ClientName = s.Client.FullName()
	}
	return row
}

func trimJoin(a, b string) string {
	switch {
	case a == "":
		return b
	case b == "":
		return a
	}
	return a + " " + b
}

// servicesWorkbook renders the service list as an xlsx file.
func servicesWorkbook(rows []ServiceRow) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Servicios"
	if _, err := f.NewSheet(sheetName); err != nil {
		return nil, errors.Wrap(err, "error creating sheet")
	}

	headers := []string{"ID", "Fecha", "Patente", "Marca / Modelo", "Cliente", "KM", "Calificación"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6E6FA"},
			Pattern: 1,
		},
	})
	if err == nil {
		f.SetRowStyle(sheetName, 1, 1, headerStyle)
	}

	for rowIndex, r := range rows {
		row := rowIndex + 2

		var rating interface{}
		if r.Rating != nil {
			rating = *r.Rating
		}
		values := []interface{}{r.ID, r.ServiceDate, r.Plate, r.BrandModel, r.ClientName, r.Km, rating}
		for colIndex, value := range values {
			cell := fmt.Sprintf("%c%d", 'A'+colIndex, row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for i := range headers {
		col := string('A' + rune(i))
		f.SetColWidth(sheetName, col, col, 18)
	}

	if f.GetSheetName(0) != sheetName {
		f.DeleteSheet("Sheet1")
	}
	if index, err := f.GetSheetIndex(sheetName); err == nil {
		f.SetActiveSheet(index)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, errors.Wrap(err, "error writing workbook")
	}
	return &buf, nil
}
