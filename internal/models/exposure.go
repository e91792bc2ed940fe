package models

import "time"

// Exposure — нормализованная запись о том, что email пользователя
// встретился в одной утечке. Записи только добавляются: повторное
// сканирование вставляет новые строки, а не обновляет существующие.
type Exposure struct {
	ID                int       `json:"id"`
	UserUID           string    `json:"-"`
	Email             string    `json:"email"`
	BreachName        string    `json:"breach_name"`
	BreachDomain      string    `json:"breach_domain"`
	BreachDate        string    `json:"breach_date"`
	BreachDescription string    `json:"breach_description"`
	DataClasses       string    `json:"data_classes"` // Список классов данных, соединённый через запятую
	Severity          string    `json:"severity"`     // low | medium | high
	Source            string    `json:"source"`
	CreatedAt         time.Time `json:"created_at"`
}

// ExposureView — представление записи для списков и карточки в клиенте.
type ExposureView struct {
	ID           int    `json:"id"`
	Type         string `json:"type"` // Credentials | Email | Phone | Address | Account
	Source       string `json:"source"`
	Data         string `json:"data"`
	Risk         string `json:"risk"`
	Date         string `json:"date"`
	Status       string `json:"status"`
	Assessment   string `json:"aiAssessment"`
	BreachName   string `json:"breach_name,omitempty"`
	BreachDomain string `json:"breach_domain,omitempty"`
}

// ScanReport — результат одного прогона сканирования.
type ScanReport struct {
	Exposures []Exposure `json:"exposures"`
	Count     int        `json:"count"`
	Scanned   string     `json:"scanned"`
}

// DashboardStats — агрегаты по найденным утечкам пользователя.
type DashboardStats struct {
	TotalExposures int `json:"totalExposures"`
	HighRisk       int `json:"highRisk"`
	MediumRisk     int `json:"mediumRisk"`
	LowRisk        int `json:"lowRisk"`
	Removed        int `json:"removed"`
}
