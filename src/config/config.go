package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

// const dsn = "host=localhost user=postgres password=password dbname=ticketbari port=5432 sslmode=disable TimeZone=Asia/Dhaka"

func GetDSN() string {
	DATABASE_HOST := os.Getenv("DATABASE_HOST")
	DATABASE_PORT := GetEnv("DATABASE_PORT", "5432")
	DATABASE_SSLMODE := GetEnv("DATABASE_SSLMODE", "disable")
	DATABASE_TIMEZONE := GetEnv("DATABASE_TIMEZONE", "UTC")
	DATABASE_USER := os.Getenv("DATABASE_USER")
	DATABASE_PASSWORD := os.Getenv("DATABASE_PASSWORD")
	DATABASE_NAME := os.Getenv("DATABASE_NAME")
	dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s", DATABASE_HOST, DATABASE_USER, DATABASE_PASSWORD, DATABASE_NAME, DATABASE_PORT, DATABASE_SSLMODE, DATABASE_TIMEZONE)
	return dsn
}

// Departure date and time are entered separately by vendors.
const (
	DEPARTURE_DATE_FORMAT = "2006-01-02"
	DEPARTURE_TIME_FORMAT = "15:04"
)

func GetEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func GetEnvInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func GetEnvBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func GetEnvDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

// Location is the zone departure dates and times are written in.
func Location() *time.Location {
	name := GetEnv("TICKET_TIMEZONE", "Asia/Dhaka")
	loc, err := time.LoadLocation(name)
	if err != nil {
		log.Printf("Unknown TICKET_TIMEZONE %s, falling back to UTC: %s\n", name, err.Error())
		return time.UTC
	}
	return loc
}

// ParseDeparture combines a departure date and time into one instant.
func ParseDeparture(date, clock string) (time.Time, error) {
	return time.ParseInLocation(DEPARTURE_DATE_FORMAT+" "+DEPARTURE_TIME_FORMAT, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), Location())
}

func PaymentCurrency() string {
	return strings.ToLower(GetEnv("PAYMENT_CURRENCY", "usd"))
}

func JWTSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func TokenTTL() time.Duration {
	return GetEnvDuration("JWT_TTL", 24*time.Hour)
}
