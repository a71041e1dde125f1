package Models

import (
	"RiderBross/AbstractFunctions"
	"strconv"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Workbook column order for ImportVehicles:
// Patente | Marca | Modelo | Año | KM | Apellidos | Nombres | Email | DNI | Teléfono
const (
	colPlate = iota
	colBrand
	colModel
	colYear
	colKm
	colSurnames
	colNames
	colEmail
	colDNI
	colPhone
)

// ImportVehicles loads vehicles (and their owners) from the first sheet of an
// xlsx workbook. Existing plates are updated, clients are matched by DNI and
// brands by description. Returns the number of vehicles written.
func ImportVehicles(db *gorm.DB, path string) (int, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return 0, errors.Wrap(err, "failed to open workbook")
	}

	rows := f.GetRows(f.GetSheetName(1))
	imported := 0
	err = db.Transaction(func(tx *gorm.DB) error {
		for i, row := range rows {
			if len(row) <= colPlate {
				continue
			}
			plate := AbstractFunctions.FormatPlate(row[colPlate])
			if plate == "" || (i == 0 && strings.EqualFold(strings.TrimSpace(row[colPlate]), "patente")) {
				continue
			}

			vehicle := Vehicle{Plate: plate}
			if err := tx.Where(Vehicle{Plate: plate}).FirstOrInit(&vehicle).Error; err != nil {
				return err
			}

			if brand := cell(row, colBrand); brand != "" {
				var b Brand
				if err := tx.Where(Brand{Description: strings.ToUpper(brand)}).FirstOrCreate(&b).Error; err != nil {
					return err
				}
				vehicle.BrandID = &b.ID
			}
			vehicle.ModelName = AbstractFunctions.StringOrNil(cell(row, colModel))
			vehicle.Year = AbstractFunctions.StringOrNil(cell(row, colYear))
			if km := AbstractFunctions.ParseKm(cell(row, colKm)); km != nil {
				vehicle.CurrentKm = *km
			}

			clientID, err := importClient(tx, row)
			if err != nil {
				return errors.Wrapf(err, "row %d", i+1)
			}
			if clientID != nil {
				vehicle.ClientID = clientID
			}

			if err := tx.Save(&vehicle).Error; err != nil {
				return errors.Wrapf(err, "row %d", i+1)
			}
			imported++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int("vehicles", imported).Str("file", path).Msg("workbook imported")
	return imported, nil
}

func importClient(tx *gorm.DB, row []string) (*uint, error) {
	dni, err := strconv.ParseInt(cell(row, colDNI), 10, 64)
	if err != nil || dni <= 0 {
		return nil, nil
	}

	client := Client{DNI: dni}
	if err := tx.Where(Client{DNI: dni}).FirstOrInit(&client).Error; err != nil {
		return nil, err
	}
	client.Surnames = strings.ToUpper(cell(row, colSurnames))
	client.Names = strings.ToUpper(cell(row, colNames))
	client.Email = strings.ToLower(cell(row, colEmail))
	if phone := AbstractFunctions.ParseDigits(cell(row, colPhone)); phone != nil {
		client.Phone = phone
	}
	if err := tx.Save(&client).Error; err != nil {
		return nil, err
	}
	return &client.ID, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
