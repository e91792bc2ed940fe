package models

// NormalizedBreach — провайдеро-независимая запись об утечке.
// Все различия форматов провайдеров (вложенные поля счётчиков, разные
// поля дат) разрешаются внутри адаптера; наружу уходит только эта форма,
// с уже подставленными значениями по умолчанию.
type NormalizedBreach struct {
	Name        string   // Имя утечки у провайдера
	Title       string   // Человекочитаемое название; может совпадать с Name
	Domain      string   // Домен сервиса, "unknown" если неизвестен
	Date        string   // Дата утечки в формате провайдера, "unknown" если неизвестна
	Description string   // Описание утечки
	DataClasses []string // Классы скомпрометированных данных
	HitCount    int      // Число затронутых записей
	Verified    bool     // Подтверждена ли утечка провайдером
	Demo        bool     // true только для демонстрационного источника без API-ключа
}
