package handler

import "strconv"

func parseCount(val string) int64 {
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return 0
	}
	return n
}
