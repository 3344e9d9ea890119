// Package xlsx exporta los registros semanales de CMV a planillas Excel.
package xlsx

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/jhoicas/cmv-api/internal/domain/entity"
)

const sheetName = "CMV semanal"

type column struct {
	header string
	value  func(r *entity.WeeklyCmvRecord) any
}

func money(d decimal.Decimal) any { return d.Round(2).InexactFloat64() }

var columns = []column{
	{"Año", func(r *entity.WeeklyCmvRecord) any { return r.Year }},
	{"Semana", func(r *entity.WeeklyCmvRecord) any { return r.Week }},
	{"Inicio", func(r *entity.WeeklyCmvRecord) any { return r.DateStart.Format(time.DateOnly) }},
	{"Fin", func(r *entity.WeeklyCmvRecord) any { return r.DateEnd.Format(time.DateOnly) }},
	{"Estado", func(r *entity.WeeklyCmvRecord) any { return r.Status }},
	{"Ventas brutas", func(r *entity.WeeklyCmvRecord) any { return money(r.GrossSales) }},
	{"Repique", func(r *entity.WeeklyCmvRecord) any { return money(r.RepiqueDeduction) }},
	{"Ingreso CMV", func(r *entity.WeeklyCmvRecord) any { return money(r.CmvAbleRevenue) }},
	{"Stock inicial", func(r *entity.WeeklyCmvRecord) any { return money(r.StockInitialTotal) }},
	{"Compras", func(r *entity.WeeklyCmvRecord) any { return money(r.PurchasesTotal) }},
	{"Stock final", func(r *entity.WeeklyCmvRecord) any { return money(r.StockFinalTotal) }},
	{"Consumos", func(r *entity.WeeklyCmvRecord) any { return money(r.TotalConsumption) }},
	{"CMA", func(r *entity.WeeklyCmvRecord) any { return money(r.CmaTotal) }},
	{"Bonificaciones", func(r *entity.WeeklyCmvRecord) any { return money(r.BonusTotal) }},
	{"CMV real", func(r *entity.WeeklyCmvRecord) any { return money(r.CmvReal) }},
	{"CMV %", func(r *entity.WeeklyCmvRecord) any { return money(r.CmvPercent) }},
	{"CMV limpio %", func(r *entity.WeeklyCmvRecord) any { return money(r.CmvCleanPercent) }},
	{"Teórico %", func(r *entity.WeeklyCmvRecord) any { return money(r.TheoreticalCmvPercent) }},
	{"Gap", func(r *entity.WeeklyCmvRecord) any { return money(r.Gap) }},
	{"Anómalo", func(r *entity.WeeklyCmvRecord) any {
		if r.Anomalous {
			return "sí"
		}
		return "no"
	}},
	{"Datos faltantes", func(r *entity.WeeklyCmvRecord) any { return strings.Join(r.MissingData, ", ") }},
}

// WriteWeeklyCmv escribe una hoja con un registro por fila, en el orden recibido.
func WriteWeeklyCmv(w io.Writer, records []*entity.WeeklyCmvRecord) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("xlsx: renombrar hoja: %w", err)
	}
	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheetName, cell, col.header); err != nil {
			return fmt.Errorf("xlsx: encabezado %s: %w", cell, err)
		}
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(columns), 1)
		_ = f.SetCellStyle(sheetName, "A1", last, headerStyle)
	}

	for row, rec := range records {
		for i, col := range columns {
			cell, _ := excelize.CoordinatesToCellName(i+1, row+2)
			if err := f.SetCellValue(sheetName, cell, col.value(rec)); err != nil {
				return fmt.Errorf("xlsx: celda %s: %w", cell, err)
			}
		}
	}
	_ = f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	if err := f.Write(w); err != nil {
		return fmt.Errorf("xlsx: escribir: %w", err)
	}
	return nil
}
