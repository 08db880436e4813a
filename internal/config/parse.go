package config

import (
	"fmt"
	"strconv"
)

func parseFloat(key, val string) (float64, error) {
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid float for %s: %w", key, err)
	}
	return f, nil
}

func parsePositive(key, val string) (float64, error) {
	f, err := parseFloat(key, val)
	if err != nil {
		return 0, err
	}
	if f <= 0 {
		return 0, fmt.Errorf("invalid %s: %v (want > 0)", key, val)
	}
	return f, nil
}

func parseInt(key, val string) (int64, error) {
	i, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid int for %s: %w", key, err)
	}
	return i, nil
}
