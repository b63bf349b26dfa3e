package seeders

// equipmentSeed - демо-оборудование. Даты задаются смещением от сегодняшнего дня,
// чтобы на свежей базе были все статусы.
type equipmentSeed struct {
	Name          string
	ModelNumber   string
	SerialNumber  string
	Manufacturer  string
	Category      string
	Location      string
	PurchaseDate  string
	LastDaysAgo   int // 0 - калибровок не было
	IntervalUnit  string
	IntervalValue int
	Status        string
	Notes         string
}

var equipmentData = []equipmentSeed{
	{Name: "Цифровой мультиметр", ModelNumber: "34461A", SerialNumber: "MY-53220001", Manufacturer: "Keysight", Category: "Электрические измерения", Location: "Лаборатория 1", PurchaseDate: "2021-02-15", LastDaysAgo: 40, IntervalUnit: "yearly", IntervalValue: 1},
	{Name: "Калибратор давления", ModelNumber: "Fluke 719Pro", SerialNumber: "FL-719-0042", Manufacturer: "Fluke", Category: "Давление", Location: "Лаборатория 2", PurchaseDate: "2020-08-01", LastDaysAgo: 175, IntervalUnit: "monthly", IntervalValue: 6},
	{Name: "Термометр сопротивления", ModelNumber: "ЭТС-100", SerialNumber: "ETS-100-118", Manufacturer: "Эталон", Category: "Температура", Location: "Термокамера", PurchaseDate: "2019-11-20", LastDaysAgo: 400, IntervalUnit: "yearly", IntervalValue: 1},
	{Name: "Весы аналитические", ModelNumber: "XPR205", SerialNumber: "MT-XPR-7781", Manufacturer: "Mettler Toledo", Category: "Масса", Location: "Весовая", PurchaseDate: "2022-05-10", LastDaysAgo: 25, IntervalUnit: "monthly", IntervalValue: 1},
	{Name: "Осциллограф", ModelNumber: "RTB2004", SerialNumber: "RS-RTB-3310", Manufacturer: "Rohde & Schwarz", Category: "Электрические измерения", Location: "Лаборатория 1", PurchaseDate: "2023-01-09", IntervalUnit: "yearly", IntervalValue: 1, Notes: "Ожидает первичной поверки"},
	{Name: "Штангенциркуль", ModelNumber: "ШЦ-I-150", SerialNumber: "SC-150-0907", Manufacturer: "ЧИЗ", Category: "Геометрия", Location: "ОТК", PurchaseDate: "2018-04-03", LastDaysAgo: 3, IntervalUnit: "weekly", IntervalValue: 2},
	{Name: "Манометр образцовый", ModelNumber: "МО-11202", SerialNumber: "MO-11202-55", Manufacturer: "Манотомь", Category: "Давление", Location: "Склад", PurchaseDate: "2015-06-30", LastDaysAgo: 900, IntervalUnit: "yearly", IntervalValue: 1, Status: "retired", Notes: "Списан"},
	{Name: "Генератор сигналов", ModelNumber: "33622A", SerialNumber: "MY-33622-09", Manufacturer: "Keysight", Category: "Электрические измерения", Location: "Ремонтный участок", PurchaseDate: "2021-09-14", LastDaysAgo: 100, IntervalUnit: "yearly", IntervalValue: 1, Status: "maintenance"},
}

type calibrationSeed struct {
	SerialNumber string
	DaysAgo      int
	CalibratedBy string
	Certificate  string
	Standard     string
	Points       string
	Results      string
}

var calibrationData = []calibrationSeed{
	{SerialNumber: "MY-53220001", DaysAgo: 40, CalibratedBy: "Иванов И.И.", Certificate: "C-2024-0113", Standard: "ГОСТ 8.409", Points: `[{"nominal": 1, "unit": "V"}, {"nominal": 10, "unit": "V"}]`, Results: `{"passed": true, "max_error": 0.002}`},
	{SerialNumber: "FL-719-0042", DaysAgo: 175, CalibratedBy: "Петров П.П.", Certificate: "C-2024-0078", Standard: "МИ 2124", Points: `[{"nominal": 100, "unit": "kPa"}]`, Results: `{"passed": true}`},
	{SerialNumber: "SC-150-0907", DaysAgo: 3, CalibratedBy: "Сидорова А.В.", Certificate: "C-2024-0150", Standard: "ГОСТ 166", Points: `[{"nominal": 50, "unit": "mm"}, {"nominal": 150, "unit": "mm"}]`, Results: `{"passed": true}`},
}

type maintenanceSeed struct {
	SerialNumber  string
	DaysAgo       int
	Type          string
	PerformedBy   string
	Description   string
	PartsReplaced string
	Cost          string
}

var maintenanceData = []maintenanceSeed{
	{SerialNumber: "MY-33622-09", DaysAgo: 5, Type: "corrective", PerformedBy: "Сервисный центр", Description: "Замена выходного каскада", PartsReplaced: "Плата выходного усилителя", Cost: "18500.00"},
	{SerialNumber: "MT-XPR-7781", DaysAgo: 12, Type: "preventive", PerformedBy: "Кузнецов Д.А.", Description: "Чистка и проверка уровня"},
	{SerialNumber: "ETS-100-118", DaysAgo: 60, Type: "inspection", PerformedBy: "Иванов И.И.", Description: "Внешний осмотр, целостность кабеля", Cost: "0"},
}
