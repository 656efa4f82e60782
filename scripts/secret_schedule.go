package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/TheRealTwizzy/raiderdle/internal/localday"
	"github.com/TheRealTwizzy/raiderdle/internal/wordle"
)

const defaultScheduleDays = 7

// Prints the secret word for each of the next SCHEDULE_DAYS local days,
// starting today at SCHEDULE_OFFSET minutes from UTC.
func main() {
	days := defaultScheduleDays
	if raw := strings.TrimSpace(os.Getenv("SCHEDULE_DAYS")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			fmt.Println("SCHEDULE_DAYS must be a positive integer")
			os.Exit(1)
		}
		days = n
	}
	offset := localday.ParseOffset(os.Getenv("SCHEDULE_OFFSET"))

	words, err := wordle.Default()
	if err != nil {
		fmt.Println("Failed to load word list:", err)
		os.Exit(1)
	}

	for _, line := range secretSchedule(words, time.Now(), offset, days) {
		fmt.Println(line)
	}
}

func secretSchedule(words *wordle.Vocabulary, now time.Time, offset, days int) []string {
	lines := make([]string, 0, days)
	for i := 0; i < days; i++ {
		day := localday.Resolve(now.Add(time.Duration(i)*24*time.Hour), offset).Day
		lines = append(lines, fmt.Sprintf("%s  %-14s  %s", day, day.Seed(wordle.SeedTag), words.Secret(day)))
	}
	return lines
}
