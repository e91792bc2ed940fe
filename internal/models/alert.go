package models

// AlertMessage — сообщение для очереди уведомлений мониторинга.
// Публикуется планировщиком, потребляется отправителем писем.
type AlertMessage struct {
	UserUID  string `json:"user_uid"`
	Email    string `json:"email"`
	Count    int    `json:"count"`
	HighRisk int    `json:"high_risk"`
}

// EmailReputation — усечённый ответ сервиса репутации адресов.
type EmailReputation struct {
	Email             string  `json:"email"`
	Deliverability    string  `json:"deliverability"`
	QualityScore      float64 `json:"quality_score"`
	IsFreeEmail       *bool   `json:"is_free_email"`
	IsDisposableEmail *bool   `json:"is_disposable_email"`
	IsCatchallEmail   *bool   `json:"is_catchall_email"`
	IsRoleEmail       *bool   `json:"is_role_email"`
	IsMxFound         *bool   `json:"is_mx_found"`
	IsSMTPValid       *bool   `json:"is_smtp_valid"`
}
