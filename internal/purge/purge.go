// Package purge submits EdgeOne (TEO) cache purge tasks.
//
// A purge is a single fire-and-forget call: the task is created and its raw
// response is reported, but its completion is never polled.
package purge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/eallion/webstack-sync/internal/constants"
	"github.com/eallion/webstack-sync/pkg/directus"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common"
	sdkerrors "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/errors"
	"github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/common/profile"
	teo "github.com/tencentcloud/tencentcloud-sdk-go/tencentcloud/teo/v20220901"
)

// Config holds the purge settings.
type Config struct {
	SecretID     string
	SecretKey    string
	SessionToken string
	Region       string
	Endpoint     string
	ZoneID       string
	Type         string
	Targets      []string
}

// Validate checks config before any request is made.
func (c *Config) Validate() error {
	if c == nil || strings.TrimSpace(c.ZoneID) == "" {
		return constants.ErrPurgeZoneRequired
	}

	if strings.TrimSpace(c.SecretID) == "" || strings.TrimSpace(c.SecretKey) == "" {
		return constants.ErrPurgeCredentials
	}

	if len(c.Targets) == 0 {
		return constants.ErrPurgeTargetsNeeded
	}

	return nil
}

// API is the part of the TEO client used here.
type API interface {
	CreatePurgeTaskWithContext(ctx context.Context, request *teo.CreatePurgeTaskRequest) (*teo.CreatePurgeTaskResponse, error)
}

// Result is the outcome of a submitted purge task.
type Result struct {
	JobID     string              `json:"job_id"     yaml:"job_id"`
	RequestID string              `json:"request_id" yaml:"request_id"`
	Failed    map[string][]string `json:"failed"     yaml:"failed"`
	Raw       string              `json:"-"          yaml:"-"`
}

// Purger submits purge tasks for one zone.
type Purger struct {
	api    API
	config Config
	logger directus.Logger
}

// NewAPI creates the TEO SDK client for config.
func NewAPI(config *Config) (API, error) {
	var credential common.CredentialIface
	if config.SessionToken != "" {
		credential = common.NewTokenCredential(config.SecretID, config.SecretKey, config.SessionToken)
	} else {
		credential = common.NewCredential(config.SecretID, config.SecretKey)
	}

	clientProfile := profile.NewClientProfile()
	clientProfile.HttpProfile.Endpoint = config.Endpoint

	if clientProfile.HttpProfile.Endpoint == "" {
		clientProfile.HttpProfile.Endpoint = constants.DefaultPurgeEndpoint
	}

	client, err := teo.NewClient(credential, config.Region, clientProfile)
	if err != nil {
		return nil, fmt.Errorf("creating TEO client: %w", err)
	}

	return client, nil
}

// New validates config and creates a purger backed by the TEO SDK.
func New(config *Config, logger directus.Logger) (*Purger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	api, err := NewAPI(config)
	if err != nil {
		return nil, err
	}

	return NewWithAPI(api, config, logger)
}

// NewWithAPI creates a purger on top of an existing API implementation.
func NewWithAPI(api API, config *Config, logger directus.Logger) (*Purger, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	cfg := *config
	if cfg.Type == "" {
		cfg.Type = constants.DefaultPurgeType
	}

	return &Purger{api: api, config: cfg, logger: logger}, nil
}

// Purge submits one purge task. It is never retried.
func (p *Purger) Purge(ctx context.Context) (*Result, error) {
	request := teo.NewCreatePurgeTaskRequest()
	request.ZoneId = common.StringPtr(p.config.ZoneID)
	request.Type = common.StringPtr(p.config.Type)
	request.Targets = common.StringPtrs(p.config.Targets)

	if p.logger != nil {
		p.logger.Info("Submitting cache purge", map[string]interface{}{
			"zone":    p.config.ZoneID,
			"type":    p.config.Type,
			"targets": p.config.Targets,
		})
	}

	response, err := p.api.CreatePurgeTaskWithContext(ctx, request)
	if err != nil {
		var sdkErr *sdkerrors.TencentCloudSDKError
		if errors.As(err, &sdkErr) {
			return nil, fmt.Errorf("creating purge task: %s (code: %s, request: %s): %w",
				sdkErr.GetMessage(), sdkErr.GetCode(), sdkErr.GetRequestId(), err)
		}

		return nil, fmt.Errorf("creating purge task: %w", err)
	}

	result := resultFrom(response)

	if p.logger != nil {
		p.logger.Info("Cache purge submitted", map[string]interface{}{
			"job_id":     result.JobID,
			"request_id": result.RequestID,
			"failed":     len(result.Failed),
		})
	}

	return result, nil
}

func resultFrom(response *teo.CreatePurgeTaskResponse) *Result {
	result := &Result{Failed: map[string][]string{}}

	if response == nil {
		return result
	}

	result.Raw = response.ToJsonString()

	if response.Response == nil {
		return result
	}

	result.JobID = stringValue(response.Response.JobId)
	result.RequestID = stringValue(response.Response.RequestId)

	for _, failure := range response.Response.FailedList {
		if failure == nil {
			continue
		}

		reason := stringValue(failure.Reason)
		for _, target := range failure.Targets {
			result.Failed[reason] = append(result.Failed[reason], stringValue(target))
		}
	}

	return result
}

func stringValue(p *string) string {
	if p == nil {
		return ""
	}

	return *p
}
