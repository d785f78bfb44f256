package models

import "time"

// WorkerSubscription is the worker's premium membership.
type WorkerSubscription struct {
	ID        string     `bson:"id" json:"id"`
	UserID    string     `bson:"userId" json:"userId"`
	Status    string     `bson:"status" json:"status"`
	Amount    float64    `bson:"amount" json:"amount"`
	AutoRenew bool       `bson:"autoRenew" json:"autoRenew"`
	StartDate *time.Time `bson:"startDate,omitempty" json:"startDate,omitempty"`
	EndDate   *time.Time `bson:"endDate,omitempty" json:"endDate,omitempty"`
	CreatedAt time.Time  `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time  `bson:"updatedAt" json:"updatedAt"`
}

// WorkerMonthlyFee is the price of the worker membership in MXN.
const WorkerMonthlyFee = 29.0

// WorkerProfile stores the employment data a worker shares for benchmarking.
type WorkerProfile struct {
	ID             string    `bson:"id" json:"id"`
	UserID         string    `bson:"userId" json:"userId"`
	Occupation     string    `bson:"occupation" json:"occupation"`
	Industry       string    `bson:"industry" json:"industry"`
	State          string    `bson:"state" json:"state"`
	EmployerName   string    `bson:"employerName,omitempty" json:"employerName,omitempty"`
	MonthlySalary  float64   `bson:"monthlySalary" json:"monthlySalary"`
	YearsOfService float64   `bson:"yearsOfService" json:"yearsOfService"`
	CreatedAt      time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt      time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SalaryBenchmark compares a worker's salary with peers in the same occupation.
type SalaryBenchmark struct {
	MySalary      float64 `json:"mySalary"`
	MarketAverage float64 `json:"marketAverage"`
	SampleSize    int     `json:"sampleSize"`
	Percentile    string  `json:"percentile"`
	// Difference is the percentage above (positive) or below the market average.
	Difference float64 `json:"difference"`
	IsEstimate bool    `json:"isEstimate"`
}

// WorkerProfileInput holds the fields a worker may edit.
type WorkerProfileInput struct {
	FullName       *string `json:"fullName"`
	Occupation     string  `json:"occupation"`
	Industry       string  `json:"industry"`
	State          string  `json:"state"`
	EmployerName   string  `json:"employerName"`
	MonthlySalary  float64 `json:"monthlySalary"`
	YearsOfService float64 `json:"yearsOfService"`
}

// WorkerProfileView is the worker profile joined with the account name.
type WorkerProfileView struct {
	WorkerProfile
	FullName string `json:"fullName"`
}
