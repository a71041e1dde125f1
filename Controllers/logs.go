package Controllers

import (
	"bufio"
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

// LogEntry is one line written by the request logger
type LogEntry struct {
	Timestamp     time.Time `json:"time"`
	Level         string    `json:"level"`
	Method        string    `json:"method"`
	Path          string    `json:"path"`
	URL           string    `json:"url"`
	Status        int       `json:"status"`
	Latency       float64   `json:"latency"` // milliseconds
	IP            string    `json:"ip"`
	UserAgent     string    `json:"user_agent"`
	RequestID     string    `json:"request_id,omitempty"`
	Error         string    `json:"error,omitempty"`
	UserID        uint      `json:"user_id,omitempty"`
	Username      string    `json:"username,omitempty"`
	ContentLength int64     `json:"content_length"`
}

// LogGroup aggregates entries sharing method and path
type LogGroup struct {
	Path        string     `json:"path"`
	Method      string     `json:"method"`
	Count       int        `json:"count"`
	AvgLatency  float64    `json:"avg_latency_ms"`
	MinLatency  float64    `json:"min_latency_ms"`
	MaxLatency  float64    `json:"max_latency_ms"`
	SuccessRate float64    `json:"success_rate"`
	Logs        []LogEntry `json:"logs"`
}

type LogsResponse struct {
	Groups      []LogGroup `json:"groups"`
	TotalLogs   int        `json:"total_logs"`
	TotalGroups int        `json:"total_groups"`
	Page        int        `json:"page"`
	PageSize    int        `json:"page_size"`
	TotalPages  int        `json:"total_pages"`
	DateFrom    time.Time  `json:"date_from"`
	DateTo      time.Time  `json:"date_to"`
}

// LogController serves the request log to administrators.
type LogController struct {
	Path string
}

func NewLogController(path string) *LogController {
	return &LogController{Path: path}
}

// dateRange reads date_from / date_to, defaulting to today.
func dateRange(ctx *fiber.Ctx) (time.Time, time.Time, error) {
	now := time.Now()
	from := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	to := from.Add(24*time.Hour - time.Nanosecond)

	if v := ctx.Query("date_from"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return from, to, errors.New("Formato de date_from inválido, usar AAAA-MM-DD")
		}
		from = parsed
	}
	if v := ctx.Query("date_to"); v != "" {
		parsed, err := time.ParseInLocation("2006-01-02", v, now.Location())
		if err != nil {
			return from, to, errors.New("Formato de date_to inválido, usar AAAA-MM-DD")
		}
		to = parsed.Add(24*time.Hour - time.Nanosecond)
	}
	return from, to, nil
}

// readLogs returns the entries within [from, to]. A missing file is an empty log.
func (c *LogController) readLogs(from, to time.Time) ([]LogEntry, error) {
	file, err := os.Open(c.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "error opening request log")
	}
	defer file.Close()

	var entries []LogEntry
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if entry.Timestamp.Before(from) || entry.Timestamp.After(to) {
			continue
		}
		entries = append(entries, entry)
	}
	return entries, errors.Wrap(scanner.Err(), "error reading request log")
}

func filterLogs(entries []LogEntry, path, method, status string) []LogEntry {
	if path == "" && method == "" && status == "" {
		return entries
	}
	wantStatus, _ := strconv.Atoi(status)

	var out []LogEntry
	for _, e := range entries {
		if path != "" && !strings.Contains(e.Path, path) {
			continue
		}
		if method != "" && !strings.EqualFold(e.Method, method) {
			continue
		}
		if status != "" && e.Status != wantStatus {
			continue
		}
		out = append(out, e)
	}
	return out
}

// groupLogsByPath groups by method and path, busiest first.
func groupLogsByPath(entries []LogEntry) []LogGroup {
	index := make(map[string]int)
	var groups []LogGroup
	for _, e := range entries {
		key := e.Method + " " + e.Path
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, LogGroup{Path: e.Path, Method: e.Method, MinLatency: e.Latency})
		}
		groups[i].Logs = append(groups[i].Logs, e)
	}

	for i := range groups {
		g := &groups[i]
		var total float64
		success := 0
		for _, e := range g.Logs {
			total += e.Latency
			if e.Latency < g.MinLatency {
				g.MinLatency = e.Latency
			}
			if e.Latency > g.MaxLatency {
				g.MaxLatency = e.Latency
			}
			if e.Status < 400 {
				success++
			}
		}
		g.Count = len(g.Logs)
		g.AvgLatency = total / float64(g.Count)
		g.SuccessRate = float64(success) / float64(g.Count) * 100
		sort.Slice(g.Logs, func(a, b int) bool { return g.Logs[a].Timestamp.After(g.Logs[b].Timestamp) })
	}

	sort.SliceStable(groups, func(a, b int) bool { return groups[a].Count > groups[b].Count })
	return groups
}

// GetLogs GET /api/logs
func (c *LogController) GetLogs(ctx *fiber.Ctx) error {
	page, _ := strconv.Atoi(ctx.Query("page", "1"))
	pageSize, _ := strconv.Atoi(ctx.Query("page_size", "50"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 1000 {
		pageSize = 50
	}

	from, to, err := dateRange(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}

	entries, err := c.readLogs(from, to)
	if err != nil {
		log.Error().Err(err).Msg("error reading logs")
		return respondError(ctx, err)
	}
	entries = filterLogs(entries, ctx.Query("path"), ctx.Query("method"), ctx.Query("status"))
	groups := groupLogsByPath(entries)

	start := (page - 1) * pageSize
	if start > len(groups) {
		start = len(groups)
	}
	end := start + pageSize
	if end > len(groups) {
		end = len(groups)
	}

	return ctx.JSON(LogsResponse{
		Groups:      groups[start:end],
		TotalLogs:   len(entries),
		TotalGroups: len(groups),
		Page:        page,
		PageSize:    pageSize,
		TotalPages:  (len(groups) + pageSize - 1) / pageSize,
		DateFrom:    from,
		DateTo:      to,
	})
}

// GetLogStats GET /api/logs/stats
func (c *LogController) GetLogStats(ctx *fiber.Ctx) error {
	from, to, err := dateRange(ctx)
	if err != nil {
		return badRequest(ctx, err)
	}
	entries, err := c.readLogs(from, to)
	if err != nil {
		log.Error().Err(err).Msg("error reading logs")
		return respondError(ctx, err)
	}

	byStatus := make(map[string]int)
	byMethod := make(map[string]int)
	errorsCount := 0
	var total float64
	for _, e := range entries {
		byStatus[strconv.Itoa(e.Status/100)+"xx"]++
		byMethod[e.Method]++
		if e.Status >= 400 {
			errorsCount++
		}
		total += e.Latency
	}

	avg := 0.0
	if len(entries) > 0 {
		avg = total / float64(len(entries))
	}
	return ctx.JSON(fiber.Map{
		"total_requests": len(entries),
		"error_requests": errorsCount,
		"avg_latency_ms": avg,
		"by_status":      byStatus,
		"by_method":      byMethod,
		"unique_paths":   len(groupLogsByPath(entries)),
		"date_from":      from,
		"date_to":        to,
	})
}
