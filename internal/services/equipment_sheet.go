package services

import (
	"fmt"
	"strings"
	"time"

	"calibrify/pkg/types"
)

// Колонки листа оборудования, общие для экспорта и импорта.
type sheetColumn struct {
	key     string
	title   string
	aliases []string
	width   float64
}

var equipmentSheetColumns = []sheetColumn{
	{key: "serial_number", title: "Серийный номер", aliases: []string{"serial number", "s/n", "№"}, width: 20},
	{key: "name", title: "Наименование", aliases: []string{"name", "название"}, width: 30},
	{key: "model_number", title: "Модель", aliases: []string{"model number", "model"}, width: 18},
	{key: "manufacturer", title: "Производитель", aliases: []string{"manufacturer"}, width: 20},
	{key: "category", title: "Категория", aliases: []string{"category"}, width: 18},
	{key: "location", title: "Расположение", aliases: []string{"location", "место"}, width: 20},
	{key: "purchase_date", title: "Дата покупки", aliases: []string{"purchase date"}, width: 14},
	{key: "last_calibration_date", title: "Последняя калибровка", aliases: []string{"last calibration"}, width: 22},
	{key: "next_calibration_date", title: "Следующая калибровка", aliases: []string{"next calibration"}, width: 22},
	{key: "calibration_interval_type", title: "Единица интервала", aliases: []string{"interval type"}, width: 16},
	{key: "calibration_interval_value", title: "Интервал", aliases: []string{"interval value"}, width: 10},
	{key: "status", title: "Статус", aliases: []string{"status"}, width: 18},
	{key: "notes", title: "Примечания", aliases: []string{"notes"}, width: 40},
}

func sheetHeaders() []interface{} {
	headers := make([]interface{}, len(equipmentSheetColumns))
	for i, c := range equipmentSheetColumns {
		headers[i] = c.title
	}
	return headers
}

// matchColumn возвращает ключ колонки по тексту заголовка.
func matchColumn(header string) (string, bool) {
	h := strings.ToLower(strings.TrimSpace(header))
	if h == "" {
		return "", false
	}
	for _, c := range equipmentSheetColumns {
		if h == c.key || h == strings.ToLower(c.title) {
			return c.key, true
		}
		for _, a := range c.aliases {
			if h == a {
				return c.key, true
			}
		}
	}
	return "", false
}

var sheetDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	types.DateLayout,
	"02.01.2006",
	"01-02-06",
	"1/2/06",
}

// parseSheetTime понимает ISO-форматы и то, как excelize отдаёт даты с форматом ячейки.
func parseSheetTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range sheetDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("не удалось разобрать дату %q", s)
}
