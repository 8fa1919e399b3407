// Command smoke drives one end-to-end pass over a running API
// instance: create a student and a course, enroll, mark attendance and
// read the summary back. Meant for post-deploy checks, not CI.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

type step struct {
	Name       string
	Method     string
	Path       string
	Body       map[string]interface{}
	WantStatus int
	// CaptureID stores data.id from the response under the given key
	// for later path substitution.
	CaptureID string
}

type result struct {
	Step     step
	Status   int
	Duration time.Duration
	Err      error
}

func main() {
	var (
		base    string
		prefix  string
		timeout time.Duration
	)
	flag.StringVar(&base, "base", "http://localhost:8080", "API base URL")
	flag.StringVar(&prefix, "prefix", "/api/v1", "API route prefix")
	flag.DurationVar(&timeout, "timeout", 5*time.Second, "HTTP client timeout")
	flag.Parse()

	suffix := time.Now().UnixNano() % 1_000_000
	studentID := fmt.Sprintf("STU%06d", suffix)
	courseCode := fmt.Sprintf("SMK%03d", suffix%1000)

	steps := []step{
		{Name: "health", Method: http.MethodGet, Path: "/health", WantStatus: http.StatusOK},
		{
			Name: "create student", Method: http.MethodPost, Path: prefix + "/students",
			Body: map[string]interface{}{
				"student_id": studentID, "first_name": "Smoke", "last_name": "Check",
				"email": fmt.Sprintf("smoke%d@example.com", suffix), "phone": "5550000000",
				"date_of_birth": "2000-01-01T00:00:00Z",
			},
			WantStatus: http.StatusCreated, CaptureID: "student",
		},
		{
			Name: "create course", Method: http.MethodPost, Path: prefix + "/courses",
			Body: map[string]interface{}{
				"course_code": courseCode, "name": "Smoke Test Course",
				"credits": 3, "max_capacity": 5,
			},
			WantStatus: http.StatusCreated, CaptureID: "course",
		},
		{
			Name: "enroll", Method: http.MethodPost, Path: prefix + "/enrollments",
			Body:       map[string]interface{}{"student_id": "{student}", "course_id": "{course}"},
			WantStatus: http.StatusCreated, CaptureID: "enrollment",
		},
		{
			Name: "mark attendance", Method: http.MethodPost, Path: prefix + "/attendance",
			Body: map[string]interface{}{
				"enrollment_id": "{enrollment}",
				"date":          time.Now().UTC().Format(time.RFC3339),
				"status":        "Present",
			},
			WantStatus: http.StatusCreated,
		},
		{Name: "attendance summary", Method: http.MethodGet, Path: prefix + "/enrollments/{enrollment}/attendance-summary", WantStatus: http.StatusOK},
		{Name: "drop enrollment", Method: http.MethodPost, Path: prefix + "/enrollments/{enrollment}/drop", WantStatus: http.StatusOK},
	}

	client := &http.Client{Timeout: timeout}
	captured := make(map[string]string)
	var results []result
	failed := 0

	for _, s := range steps {
		res := runStep(client, base, s, captured)
		if res.Err != nil {
			failed++
			results = append(results, res)
			break
		}
		results = append(results, res)
	}

	printReport(results)
	if failed > 0 {
		os.Exit(1)
	}
}

func runStep(client *http.Client, base string, s step, captured map[string]string) result {
	res := result{Step: s}

	path := s.Path
	for key, val := range captured {
		path = strings.ReplaceAll(path, "{"+key+"}", val)
	}

	var body io.Reader
	if s.Body != nil {
		resolved := make(map[string]interface{}, len(s.Body))
		for k, v := range s.Body {
			if str, ok := v.(string); ok {
				for key, val := range captured {
					str = strings.ReplaceAll(str, "{"+key+"}", val)
				}
				resolved[k] = str
				continue
			}
			resolved[k] = v
		}
		raw, err := json.Marshal(resolved)
		if err != nil {
			res.Err = err
			return res
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequest(s.Method, strings.TrimRight(base, "/")+path, body)
	if err != nil {
		res.Err = err
		return res
	}
	if s.Body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := client.Do(req)
	res.Duration = time.Since(start)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()
	res.Status = resp.StatusCode

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		res.Err = fmt.Errorf("read body: %w", err)
		return res
	}
	if resp.StatusCode != s.WantStatus {
		res.Err = fmt.Errorf("want status %d, got %d: %s", s.WantStatus, resp.StatusCode, strings.TrimSpace(string(raw)))
		return res
	}
	if s.CaptureID != "" {
		id, err := extractID(raw)
		if err != nil {
			res.Err = err
			return res
		}
		captured[s.CaptureID] = id
	}
	return res
}

func extractID(raw []byte) (string, error) {
	var envelope struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if envelope.Data.ID == "" {
		return "", fmt.Errorf("response carries no data.id")
	}
	return envelope.Data.ID, nil
}

func printReport(results []result) {
	fmt.Println("Smoke Report")
	fmt.Println("============")
	for _, res := range results {
		status := "OK"
		if res.Err != nil {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s (%d, %s)\n", status, res.Step.Name, res.Status, res.Duration)
		if res.Err != nil {
			fmt.Printf("  %v\n", res.Err)
		}
	}
}
