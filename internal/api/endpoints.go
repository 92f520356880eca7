package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"github.com/ndasurveying/dashctl/internal/domain"
	"github.com/ndasurveying/dashctl/internal/metrics"
	"github.com/ndasurveying/dashctl/internal/reports"
)

// Login exchanges credentials for a session via POST /token (OAuth2 password
// form). The token endpoint does not use the standard envelope: success is
// {access_token, token_type, role}, failure is {detail} with 401.
//
// The returned session is NOT persisted; the caller decides whether to save
// it, so a failed login can never clobber a working stored session.
func (c *Client) Login(ctx context.Context, username, password string) (domain.Session, error) {
	const op = "api.login"

	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := c.newRequest(ctx, http.MethodPost, "/token", body{form: form})
	if err != nil {
		return domain.Session{}, domain.Internal(err, op, "build request")
	}
	// No bearer header on the login call itself, even if a stale session
	// is lying around.
	req.Header.Del("Authorization")

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("login", http.MethodPost, "network_error").Inc()
		return domain.Session{}, domain.Unavailable(err, op)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return domain.Session{}, domain.Wrap(err, domain.EUNAVAILABLE, op, "read response")
	}

	var payload struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		Role        string `json:"role"`
		Detail      string `json:"detail"`
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &payload); err != nil {
			return domain.Session{}, domain.Wrap(err, domain.EREMOTE, op,
				fmt.Sprintf("malformed response (status %d)", resp.StatusCode))
		}
	}

	if resp.StatusCode != http.StatusOK || payload.AccessToken == "" {
		metrics.APIRequestsTotal.WithLabelValues("login", http.MethodPost, "failure").Inc()
		msg := payload.Detail
		if msg == "" {
			msg = "login failed"
		}
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusOK {
			return domain.Session{}, domain.Unauthorized(op, msg)
		}
		return domain.Session{}, domain.Remote(op, msg)
	}

	metrics.APIRequestsTotal.WithLabelValues("login", http.MethodPost, "success").Inc()
	c.logger.Info("Login succeeded", "role", payload.Role)
	return domain.Session{
		Token: payload.AccessToken,
		Role:  domain.ParseRole(payload.Role),
	}, nil
}

// Overview fetches the dashboard command-center payload.
func (c *Client) Overview(ctx context.Context) (*domain.DashboardOverview, error) {
	env, err := c.do(ctx, "overview", http.MethodGet, "/api/dashboard/overview", body{})
	if err != nil {
		return nil, err
	}
	overview := &domain.DashboardOverview{}
	if err := decodeData("api.overview", env, overview); err != nil {
		return nil, err
	}
	return overview, nil
}

// Jobs fetches the job list used for selection. Financial fields are not
// populated by this endpoint.
func (c *Client) Jobs(ctx context.Context) ([]domain.Job, error) {
	env, err := c.do(ctx, "jobs", http.MethodGet, "/api/dashboard/jobs", body{})
	if err != nil {
		return nil, err
	}
	var jobs []domain.Job
	if err := decodeData("api.jobs", env, &jobs); err != nil {
		return nil, err
	}
	return jobs, nil
}

// JobDetails fetches the full financial analysis for one job.
func (c *Client) JobDetails(ctx context.Context, jobID int64) (*domain.JobDetails, error) {
	path := "/api/dashboard/job/" + strconv.FormatInt(jobID, 10)
	env, err := c.do(ctx, "job_details", http.MethodGet, path, body{})
	if err != nil {
		return nil, err
	}
	details := &domain.JobDetails{}
	if err := decodeData("api.job_details", env, details); err != nil {
		return nil, err
	}
	return details, nil
}

// BudgetStatus fetches per-category budget positions for one job.
func (c *Client) BudgetStatus(ctx context.Context, jobID int64) (*domain.BudgetStatus, error) {
	path := "/api/budget/status/" + strconv.FormatInt(jobID, 10)
	env, err := c.do(ctx, "budget_status", http.MethodGet, path, body{})
	if err != nil {
		return nil, err
	}
	status := &domain.BudgetStatus{}
	if err := decodeData("api.budget_status", env, status); err != nil {
		return nil, err
	}
	return status, nil
}

// CheckAllBudgets triggers a backend sweep of every job's budget thresholds
// and returns the backend's summary message.
func (c *Client) CheckAllBudgets(ctx context.Context) (string, error) {
	env, err := c.do(ctx, "budget_check_all", http.MethodPost, "/api/budget/check-all", body{})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}

// CheckJobBudget triggers a budget check for a single job.
func (c *Client) CheckJobBudget(ctx context.Context, jobID int64) (*domain.BudgetStatus, error) {
	path := "/api/budget/check-job/" + strconv.FormatInt(jobID, 10)
	env, err := c.do(ctx, "budget_check_job", http.MethodPost, path, body{})
	if err != nil {
		return nil, err
	}
	status := &domain.BudgetStatus{}
	if err := decodeData("api.budget_check_job", env, status); err != nil {
		return nil, err
	}
	return status, nil
}

// Upload posts a report workbook as multipart form data to
// /api/upload/{kind} and returns the backend's processing message.
func (c *Client) Upload(ctx context.Context, kind reports.Kind, filename string, content io.Reader) (string, error) {
	op := "api.upload"

	contentType := reports.DetectContentType("", filename, nil)
	r, formContentType, err := uploadBody(filepath.Base(filename), content, contentType)
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(string(kind), "error").Inc()
		return "", domain.Internal(err, op, "build multipart body")
	}

	env, err := c.do(ctx, "upload", http.MethodPost, "/api/upload/"+string(kind),
		body{reader: r, contentType: formContentType})
	if err != nil {
		metrics.UploadsTotal.WithLabelValues(string(kind), "failure").Inc()
		return "", err
	}

	metrics.UploadsTotal.WithLabelValues(string(kind), "success").Inc()
	return env.Message, nil
}

// ResolveAlert marks an alert handled via PUT /api/alerts/{id}/resolve.
// Failures are returned, never swallowed: the caller chooses how to surface
// them.
func (c *Client) ResolveAlert(ctx context.Context, alertID int64) error {
	path := "/api/alerts/" + strconv.FormatInt(alertID, 10) + "/resolve"
	_, err := c.do(ctx, "resolve_alert", http.MethodPut, path, body{})
	if err != nil {
		metrics.AlertsResolved.WithLabelValues("failure").Inc()
		return err
	}
	metrics.AlertsResolved.WithLabelValues("success").Inc()
	return nil
}

// Alerts fetches every active alert across all jobs.
func (c *Client) Alerts(ctx context.Context) ([]domain.Alert, error) {
	env, err := c.do(ctx, "alerts", http.MethodGet, "/api/alerts", body{})
	if err != nil {
		return nil, err
	}
	var alerts []domain.Alert
	if err := decodeData("api.alerts", env, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// CreateJob registers a new job. The backend restricts this to admin and
// staff roles; the command layer guards before calling.
func (c *Client) CreateJob(ctx context.Context, params domain.JobCreateParams) (*domain.Job, error) {
	env, err := c.do(ctx, "create_job", http.MethodPost, "/api/jobs/create", body{json: params})
	if err != nil {
		return nil, err
	}
	job := &domain.Job{}
	if err := decodeData("api.create_job", env, job); err != nil {
		return nil, err
	}
	return job, nil
}

// UpdateJobProgress sets a job's completion percentage (0-100).
func (c *Client) UpdateJobProgress(ctx context.Context, jobID int64, progress float64) error {
	if progress < 0 || progress > 100 {
		return domain.Invalid("api.update_progress", "progress must be between 0 and 100")
	}
	form := url.Values{}
	form.Set("progress_percentage", strconv.FormatFloat(progress, 'f', -1, 64))
	path := "/api/jobs/" + strconv.FormatInt(jobID, 10) + "/update-progress"
	_, err := c.do(ctx, "update_progress", http.MethodPut, path, body{form: form})
	return err
}

// ProcessCVR triggers the backend's CVR auto-update engine and returns the
// processed file name.
func (c *Client) ProcessCVR(ctx context.Context) (string, error) {
	env, err := c.do(ctx, "cvr_process", http.MethodPost, "/api/cvr/process", body{})
	if err != nil {
		return "", err
	}
	return env.ProcessedFile, nil
}

// DownloadCVR streams the most recently processed CVR workbook into w and
// returns the filename the backend suggested.
func (c *Client) DownloadCVR(ctx context.Context, w io.Writer) (string, error) {
	const op = "api.cvr_download"

	req, err := c.newRequest(ctx, http.MethodGet, "/api/cvr/download", body{})
	if err != nil {
		return "", domain.Internal(err, op, "build request")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.APIRequestsTotal.WithLabelValues("cvr_download", http.MethodGet, "network_error").Inc()
		return "", domain.Unavailable(err, op)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		env := &envelope{}
		_ = json.Unmarshal(raw, env)
		metrics.APIRequestsTotal.WithLabelValues("cvr_download", http.MethodGet, "failure").Inc()
		return "", c.checkStatus(op, resp.StatusCode, env)
	}

	if _, err := io.Copy(w, resp.Body); err != nil {
		return "", domain.Wrap(err, domain.EUNAVAILABLE, op, "stream download")
	}

	metrics.APIRequestsTotal.WithLabelValues("cvr_download", http.MethodGet, "success").Inc()

	filename := "cvr.xlsx"
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil && params["filename"] != "" {
			filename = params["filename"]
		}
	}
	return filename, nil
}

// JobSummaryReport fetches the executive overview of all projects.
func (c *Client) JobSummaryReport(ctx context.Context) (*domain.JobSummaryReport, error) {
	env, err := c.do(ctx, "report_job_summary", http.MethodGet, "/api/reports/job-summary", body{})
	if err != nil {
		return nil, err
	}
	report := &domain.JobSummaryReport{}
	if err := decodeData("api.report_job_summary", env, report); err != nil {
		return nil, err
	}
	return report, nil
}

// FinancialSummaryReport fetches the portfolio financial breakdown.
func (c *Client) FinancialSummaryReport(ctx context.Context) (*domain.FinancialSummaryReport, error) {
	env, err := c.do(ctx, "report_financial", http.MethodGet, "/api/reports/financial-summary", body{})
	if err != nil {
		return nil, err
	}
	report := &domain.FinancialSummaryReport{}
	if err := decodeData("api.report_financial", env, report); err != nil {
		return nil, err
	}
	return report, nil
}
