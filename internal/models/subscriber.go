// Package models содержит доменные структуры абонентов и их абонементов,
// а также вспомогательные типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/SRSacc/srsapp-api/internal/subscription"
)

// PaymentMode — способ оплаты абонемента. Поле информационное,
// на расчёт периода не влияет.
type PaymentMode string

// Способы оплаты.
const (
	PaymentSelf    PaymentMode = "self"
	PaymentCompany PaymentMode = "company"
)

// SubscriberType — категория абонента.
type SubscriberType string

// Категории абонентов.
const (
	SubscriberRegular SubscriberType = "regular"
	SubscriberWorker  SubscriberType = "worker"
)

// SubscriptionPeriod — текущий период абонемента.
// EndDateTime — время окончания доступа в первый день действия,
// ExpirationDate — момент истечения всего периода.
// Status хранится как кэш и всегда пересчитывается из
// (now, StartDateTime, ExpirationDate).
type SubscriptionPeriod struct {
	PlanCode       subscription.PlanCode
	PaymentMode    PaymentMode
	StartDateTime  time.Time
	EndDateTime    time.Time
	ExpirationDate time.Time
	Status         subscription.Status
}

// Subscriber — абонент с текущим периодом абонемента.
// Version используется хранилищем для оптимистической блокировки:
// сохранение со старой версией отклоняется.
type Subscriber struct {
	UID            string
	FullName       string
	PhoneNumber    string
	Referral       string
	SubscriberType SubscriberType
	Image          string
	Period         SubscriptionPeriod
	Version        int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// SubscriptionHistoryRecord — неизменяемый снимок вытесненного периода.
// Создаётся только архиватором при переподписке, никогда не обновляется.
type SubscriptionHistoryRecord struct {
	ID             int64
	SubscriberUID  string
	PlanCode       subscription.PlanCode
	PaymentMode    PaymentMode
	StartDateTime  time.Time
	EndDateTime    time.Time
	ExpirationDate time.Time
	Status         subscription.Status
	ArchivedAt     time.Time
}

// LifecycleEvent публикуется в брокер при смене статуса абонемента.
type LifecycleEvent struct {
	SubscriberUID  string                `json:"subscriber_uid"`
	FullName       string                `json:"full_name"`
	PlanCode       subscription.PlanCode `json:"plan_code"`
	From           subscription.Status   `json:"from"`
	To             subscription.Status   `json:"to"`
	ExpirationDate time.Time             `json:"expiration_date"`
	OccurredAt     time.Time             `json:"occurred_at"`
}

// DummySubscriber используется для приёма данных из JSON-запроса
// на создание абонента. Даты приходят строками в формате RFC 3339,
// StartDateTime опционален — по умолчанию берётся текущее время.
type DummySubscriber struct {
	FullName       string `json:"full_name" validate:"required"`
	PhoneNumber    string `json:"phone_number,omitempty"`
	Referral       string `json:"referral,omitempty"`
	SubscriberType string `json:"subscriber_type" validate:"required,oneof=regular worker"`
	PaymentMode    string `json:"payment_mode" validate:"required,oneof=self company"`
	PlanCode       string `json:"plan_code" validate:"required,oneof=half-day-morning half-day-night full-day weekly-day weekly-full biweekly-day biweekly-full monthly-day monthly-full"`
	StartDateTime  string `json:"start_datetime,omitempty"`
	Image          string `json:"image,omitempty"`
}

// DummyResubscribe используется для приёма данных запроса на переподписку.
// StartDateTime опционален, PaymentMode по умолчанию сохраняется прежним.
type DummyResubscribe struct {
	PlanCode      string `json:"plan_code" validate:"required,oneof=half-day-morning half-day-night full-day weekly-day weekly-full biweekly-day biweekly-full monthly-day monthly-full"`
	PaymentMode   string `json:"payment_mode,omitempty" validate:"omitempty,oneof=self company"`
	StartDateTime string `json:"start_datetime,omitempty"`
}

// DummySubscriberUpdate используется для приёма данных запроса на
// редактирование абонента. Смена тарифа или даты начала влечёт
// полный пересчёт периода.
type DummySubscriberUpdate struct {
	FullName      string `json:"full_name,omitempty"`
	PhoneNumber   string `json:"phone_number,omitempty"`
	Referral      string `json:"referral,omitempty"`
	PaymentMode   string `json:"payment_mode,omitempty" validate:"omitempty,oneof=self company"`
	PlanCode      string `json:"plan_code,omitempty" validate:"omitempty,oneof=half-day-morning half-day-night full-day weekly-day weekly-full biweekly-day biweekly-full monthly-day monthly-full"`
	StartDateTime string `json:"start_datetime,omitempty"`
	Image         string `json:"image,omitempty"`
}
