package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"quiz-attempt/internal/domain"
)

// ErrServiceUnavailable wraps transport-level failures talking to the quiz service.
var ErrServiceUnavailable = errors.New("quiz service unavailable")

// APIError is a non-2xx answer from the quiz service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if strings.TrimSpace(e.Message) == "" {
		return fmt.Sprintf("request failed with status %d", e.StatusCode)
	}
	return e.Message
}

// QuizClient talks JSON over HTTP to the quiz service.
type QuizClient struct {
	baseURL    string
	httpClient *http.Client
	sf         singleflight.Group
}

type questionsResponse struct {
	Questions []domain.Question `json:"questions"`
	EndTime   string            `json:"endTime"`
}

type joinRequest struct {
	RollNo string `json:"rollNo"`
}

type joinResponse struct {
	Status string `json:"status"`
	Msg    string `json:"msg"`
}

type errorResponse struct {
	Msg   string `json:"msg"`
	Error string `json:"error"`
}

func NewQuizClient(baseURL string, httpClient *http.Client) *QuizClient {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &QuizClient{baseURL: baseURL, httpClient: httpClient}
}

// FetchQuestions loads the question set for a started quiz. A non-2xx status or an
// empty question list is reported as domain.ErrNotStarted. Concurrent calls for the
// same code share one request.
func (c *QuizClient) FetchQuestions(ctx context.Context, code string) (domain.QuestionSet, error) {
	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		var payload questionsResponse
		if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/questions/"+url.PathEscape(code), nil, nil, &payload); err != nil {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return domain.QuestionSet{}, fmt.Errorf("%w: %w", domain.ErrNotStarted, err)
			}
			return domain.QuestionSet{}, err
		}
		if len(payload.Questions) == 0 {
			return domain.QuestionSet{}, domain.ErrNotStarted
		}
		endTime, err := parseTime(payload.EndTime)
		if err != nil {
			return domain.QuestionSet{}, fmt.Errorf("parse endTime: %w", err)
		}
		return domain.QuestionSet{Questions: payload.Questions, EndTime: endTime}, nil
	})
	if err != nil {
		return domain.QuestionSet{}, err
	}
	return result.(domain.QuestionSet), nil
}

// Submit posts the final answers. The attempt id travels as Idempotency-Key so the
// service can recognise a retried submission.
func (c *QuizClient) Submit(ctx context.Context, code string, submission domain.Submission) error {
	headers := map[string]string{}
	if submission.AttemptID != "" {
		headers["Idempotency-Key"] = submission.AttemptID
	}
	return c.doJSON(ctx, http.MethodPost, "/api/quiz/submit/"+url.PathEscape(code), headers, submission, nil)
}

// Join asks whether the quiz accepts participants and returns its status.
func (c *QuizClient) Join(ctx context.Context, code, rollNo string) (domain.JoinStatus, error) {
	var payload joinResponse
	if err := c.doJSON(ctx, http.MethodPost, "/api/quiz/join/"+url.PathEscape(code), nil, joinRequest{RollNo: rollNo}, &payload); err != nil {
		return "", err
	}
	return domain.JoinStatus(payload.Status), nil
}

// Leaderboard returns the published ranking for a quiz.
func (c *QuizClient) Leaderboard(ctx context.Context, code string) ([]domain.LeaderboardEntry, error) {
	var entries []domain.LeaderboardEntry
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/leaderboard/"+url.PathEscape(code), nil, nil, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Summary returns aggregate results for a quiz.
func (c *QuizClient) Summary(ctx context.Context, code string) (domain.Summary, error) {
	var summary domain.Summary
	if err := c.doJSON(ctx, http.MethodGet, "/api/quiz/summary/"+url.PathEscape(code), nil, nil, &summary); err != nil {
		return domain.Summary{}, err
	}
	return summary, nil
}

func (c *QuizClient) doJSON(ctx context.Context, method, path string, headers map[string]string, requestBody any, responseBody any) error {
	var body io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return err
		}
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if requestBody != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	request.Header.Set("Accept", "application/json")
	for k, v := range headers {
		request.Header.Set(k, v)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrServiceUnavailable, err)
	}
	defer response.Body.Close()

	if response.StatusCode < http.StatusOK || response.StatusCode >= http.StatusMultipleChoices {
		apiErr := APIError{StatusCode: response.StatusCode}
		var payload errorResponse
		if err := json.NewDecoder(response.Body).Decode(&payload); err == nil {
			apiErr.Message = strings.TrimSpace(payload.Msg)
			if apiErr.Message == "" {
				apiErr.Message = strings.TrimSpace(payload.Error)
			}
		}
		if apiErr.Message == "" {
			apiErr.Message = response.Status
		}
		return &apiErr
	}

	if responseBody == nil {
		return nil
	}
	return json.NewDecoder(response.Body).Decode(responseBody)
}

func parseTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, raw)
}

// DescribeError turns client errors into something a participant can act on.
func DescribeError(err error, baseURL string) error {
	if errors.Is(err, ErrServiceUnavailable) {
		return fmt.Errorf("quiz service unavailable at %s", baseURL)
	}
	return err
}
