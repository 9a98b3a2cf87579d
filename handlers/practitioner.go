package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/abhissng/nhwr-mediator/adapters/gin/middleware"
	"github.com/abhissng/nhwr-mediator/adapters/log"
	"github.com/abhissng/nhwr-mediator/blame"
	"github.com/abhissng/nhwr-mediator/configstore"
	"github.com/abhissng/nhwr-mediator/openhim"
	"github.com/abhissng/nhwr-mediator/orchestration"
	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/helpers"
	"github.com/gin-gonic/gin"

	httpclient "github.com/abhissng/nhwr-mediator/adapters/http"
)

// ForwardUpdate posts the request body unchanged to the registry's update
// endpoint and relays the registry's answer.
func (h *Handlers) ForwardUpdate(c *gin.Context) {
	h.log.Info(constant.ProcessingRequest, log.String("method", c.Request.Method), log.String("url", c.Request.RequestURI))

	svc, ok := h.downstream(c)
	if !ok {
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		b := blame.RequestBodyDataExtractionFailed(err)
		h.log.Error(b.FetchMessage(), log.Blame(b))
		c.JSON(helpers.FetchHTTPStatusCode(b.FetchResponseType()), b.FetchErrorResponse())
		return
	}

	target, err := helpers.AppendPath(svc.URL, constant.DownstreamUpdatePath)
	if err != nil {
		h.respondConfigError(c, err)
		return
	}

	headers := downstreamHeaders(svc)
	req := httpclient.NewRequest(httpclient.MethodPost, target.String(), body)
	req.Headers = headers

	start := time.Now()
	resp, err := h.client.Do(c.Request.Context(), req)
	h.observe("update", start, err)

	if err != nil {
		h.log.Error(constant.DownstreamFailed,
			log.String("url", target.String()),
			log.String("body", string(body)),
			log.Err(err),
		)
		if h.legacyFailureMode {
			<-c.Request.Context().Done()
			c.Abort()
			return
		}
		b := downstreamBlame(err)
		c.JSON(http.StatusBadGateway, b.FetchErrorResponse())
		h.report(c, openhim.StatusFailed, http.StatusBadGateway, b.FetchMessage(), nil)
		return
	}

	recorder := orchestration.NewRecorder()
	recorder.Add(orchestration.Build(
		UpdateOrchestrationName, start,
		httpclient.MethodPost, target.String(), orchestration.SerializeHeaders(auditHeaders(headers)), string(body),
		orchestration.NewResponse(resp.StatusCode, resp.Header, resp.ReceivedAt), string(resp.Body),
	))
	c.Set(orchestrationsKey, recorder.List())

	c.Data(resp.StatusCode, constant.ContentTypeOpenHIM.String(), resp.Body)
	h.report(c, openhim.StatusSuccessful, resp.StatusCode, string(resp.Body), recorder.List())
}

// FetchRecords lists practitioners, optionally filtered by one field. It
// answers 200 whatever the registry does.
func (h *Handlers) FetchRecords(c *gin.Context) {
	h.log.Info(constant.ProcessingRequest, log.String("method", c.Request.Method), log.String("url", c.Request.RequestURI))

	svc, ok := h.downstream(c)
	if !ok {
		return
	}

	target, err := listURL(svc.URL, c.Param("field"), c.Param("value"))
	if err != nil {
		h.respondConfigError(c, err)
		return
	}

	headers := downstreamHeaders(svc)
	req := httpclient.NewRequest(httpclient.MethodGet, target, nil)
	req.Headers = headers

	start := time.Now()
	resp, err := h.client.Do(c.Request.Context(), req)
	h.observe("fetch", start, err)

	var (
		responseBody []byte
		response     *orchestration.Response
	)
	if resp != nil {
		responseBody = resp.Body
		response = orchestration.NewResponse(resp.StatusCode, resp.Header, resp.ReceivedAt)
	}
	if err != nil {
		h.log.Info("Failed to get Data", log.String("url", target), log.String("body", string(responseBody)), log.Err(err))
	} else {
		h.log.Info(constant.ProcessedRequest, log.String("method", c.Request.Method), log.String("url", c.Request.RequestURI))
	}

	recorder := orchestration.NewRecorder()
	recorder.Add(orchestration.Build(
		FetchOrchestrationName, start,
		httpclient.MethodGet, target, orchestration.SerializeHeaders(auditHeaders(headers)), "",
		response, string(responseBody),
	))
	c.Set(orchestrationsKey, recorder.List())

	contentType := constant.ContentTypeJSON.String()
	if resp != nil && resp.Header.Get(constant.ContentTypeHeader) != "" {
		contentType = resp.Header.Get(constant.ContentTypeHeader)
	}
	c.Data(http.StatusOK, contentType, responseBody)

	status := openhim.StatusSuccessful
	if err != nil {
		status = openhim.StatusFailed
	}
	h.report(c, status, http.StatusOK, string(responseBody), recorder.List())
}

// Orchestrations returns what the handler recorded for the request, once it has run.
func Orchestrations(c *gin.Context) []orchestration.Orchestration {
	if v, ok := c.Get(orchestrationsKey); ok {
		if list, ok := v.([]orchestration.Orchestration); ok {
			return list
		}
	}
	return nil
}

// downstream reads the registry settings from the current configuration. It
// writes the error response itself when they are unusable.
func (h *Handlers) downstream(c *gin.Context) (configstore.ServiceConfig, bool) {
	svc, err := h.store.Service(constant.DownstreamService)
	if err != nil {
		h.respondConfigError(c, err)
		return configstore.ServiceConfig{}, false
	}
	return svc, true
}

func (h *Handlers) respondConfigError(c *gin.Context, err error) {
	b := blame.DownstreamConfigMissing(constant.DownstreamService, err)
	h.log.Error(b.FetchMessage(), log.Blame(b))
	status := helpers.FetchHTTPStatusCode(b.FetchResponseType())
	c.JSON(status, b.FetchErrorResponse())
	h.report(c, openhim.StatusFailed, status, b.FetchMessage(), nil)
}

// report hands the outcome to the reporter in the background. The caller's
// response is never affected.
func (h *Handlers) report(c *gin.Context, status string, code int, body string, orchestrations []orchestration.Orchestration) {
	if h.reporter == nil {
		return
	}
	transactionID := middleware.GetTransactionID(c)
	if transactionID.IsEmpty() {
		return
	}

	ctx := context.WithoutCancel(c.Request.Context())
	go func() {
		ctx, cancel := context.WithTimeout(ctx, h.reportTimeout)
		defer cancel()
		if err := h.reporter.ReportStatus(ctx, transactionID, status, body, code, orchestrations); err != nil {
			h.log.Warn(constant.TransactionFailed, log.String(constant.TransactionID, transactionID.String()), log.Err(err))
		}
	}()
}

func (h *Handlers) observe(operation string, start time.Time, err error) {
	if h.metrics != nil {
		h.metrics.ObserveDownstreamCall(constant.DownstreamService, operation, time.Since(start), err)
	}
}

func downstreamHeaders(svc configstore.ServiceConfig) map[string]string {
	return map[string]string{
		constant.AuthorizationHeader: httpclient.BasicAuth(svc.Username, svc.Password),
		constant.ContentTypeHeader:   constant.ContentTypeJSON.String(),
	}
}

// auditHeaders is the header set stored on an orchestration. Credentials are
// not forwarded to the platform.
func auditHeaders(headers map[string]string) map[string]string {
	out := make(map[string]string, len(headers))
	for k, v := range headers {
		out[k] = v
	}
	if _, ok := out[constant.AuthorizationHeader]; ok {
		out[constant.AuthorizationHeader] = redactedCredentials
	}
	return out
}

// listURL is {base}/api/Practitioner?_format=json, plus &_{field}={value}
// when both are given.
func listURL(base, field, value string) (string, error) {
	target, err := helpers.AppendPath(base, constant.DownstreamListPath)
	if err != nil {
		return "", err
	}
	query := url.QueryEscape(constant.FormatQueryParam) + "=" + url.QueryEscape(constant.FormatJSON)
	if field != "" && value != "" {
		query += "&" + url.QueryEscape("_"+field) + "=" + url.QueryEscape(value)
	}
	target.RawQuery = query
	return target.String(), nil
}

func downstreamBlame(err error) blame.Blame {
	var b blame.Blame
	if errors.As(err, &b) {
		return b
	}
	return blame.DownstreamRequestFailed("", "", err)
}
