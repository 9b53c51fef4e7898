// Package devicefarm lists real devices available in AWS Device Farm. Running
// tests on them is not automated yet and reports a pending status.
package devicefarm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/devicefarm"
	"github.com/aws/aws-sdk-go-v2/service/devicefarm/types"

	"github.com/selimozcann/StoreHunter/internal/awscfg"
)

// DefaultRegion is the only region that hosts Device Farm.
const DefaultRegion = "us-west-2"

// PendingMessage is returned by RunOnDevice until Appium orchestration exists.
const PendingMessage = "Real device testing requires AWS Device Farm project setup"

// ListDevicesAPI is the subset of the Device Farm client used here.
type ListDevicesAPI interface {
	ListDevices(ctx context.Context, params *devicefarm.ListDevicesInput, optFns ...func(*devicefarm.Options)) (*devicefarm.ListDevicesOutput, error)
}

// Config selects the project and credentials.
type Config struct {
	Region     string
	ProjectARN string
	Creds      awscfg.Credentials
}

// Device is one available real device.
type Device struct {
	ARN          string `json:"arn"`
	Name         string `json:"name"`
	Model        string `json:"model"`
	OS           string `json:"os"`
	Platform     string `json:"platform"`
	FormFactor   string `json:"formFactor"`
	Availability string `json:"availability"`
}

// Devices groups available devices by platform.
type Devices struct {
	IOS     []Device `json:"iOS"`
	Android []Device `json:"Android"`
}

// Total is the number of devices across platforms.
func (d Devices) Total() int { return len(d.IOS) + len(d.Android) }

// RunStatus is the outcome of a real-device run request.
type RunStatus struct {
	Device  string `json:"device"`
	URL     string `json:"url"`
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Client talks to Device Farm.
type Client struct {
	api        ListDevicesAPI
	projectARN string
	logger     *slog.Logger
}

// NewClient wraps api. A nil logger falls back to slog.Default.
func NewClient(api ListDevicesAPI, projectARN string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{api: api, projectARN: projectARN, logger: logger}
}

// New builds a Client on the AWS SDK using cfg.
func New(ctx context.Context, cfg Config, logger *slog.Logger) (*Client, error) {
	region := cfg.Region
	if region == "" {
		region = DefaultRegion
	}
	awsCfg, err := awscfg.Load(ctx, region, cfg.Creds)
	if err != nil {
		return nil, err
	}
	return NewClient(devicefarm.NewFromConfig(awsCfg), cfg.ProjectARN, logger), nil
}

// ListDevices returns devices whose availability is AVAILABLE, following
// pagination, grouped into iOS and Android.
func (c *Client) ListDevices(ctx context.Context) (Devices, error) {
	in := &devicefarm.ListDevicesInput{
		Filters: []types.DeviceFilter{{
			Attribute: types.DeviceFilterAttribute("AVAILABILITY"),
			Operator:  types.RuleOperator("EQUALS"),
			Values:    []string{"AVAILABLE"},
		}},
	}
	if c.projectARN != "" {
		in.Arn = aws.String(c.projectARN)
	}

	out := Devices{IOS: []Device{}, Android: []Device{}}
	for {
		resp, err := c.api.ListDevices(ctx, in)
		if err != nil {
			return Devices{}, fmt.Errorf("list device farm devices: %w", err)
		}
		for _, d := range resp.Devices {
			dev := Device{
				ARN:          aws.ToString(d.Arn),
				Name:         aws.ToString(d.Name),
				Model:        aws.ToString(d.Model),
				OS:           aws.ToString(d.Os),
				Platform:     string(d.Platform),
				FormFactor:   string(d.FormFactor),
				Availability: string(d.Availability),
			}
			switch dev.Platform {
			case "IOS":
				out.IOS = append(out.IOS, dev)
			case "ANDROID":
				out.Android = append(out.Android, dev)
			}
		}
		if resp.NextToken == nil || *resp.NextToken == "" {
			break
		}
		in.NextToken = resp.NextToken
	}
	c.logger.Debug("listed device farm devices", "ios", len(out.IOS), "android", len(out.Android))
	return out, nil
}

// RunOnDevice records the request and reports it as pending.
func (c *Client) RunOnDevice(_ context.Context, url, deviceARN string) RunStatus {
	c.logger.Info("real device run requested", "url", url, "device", deviceARN)
	return RunStatus{Device: deviceARN, URL: url, Status: "pending", Message: PendingMessage}
}
