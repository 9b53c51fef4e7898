package devicefarm_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/devicefarm"
	"github.com/aws/aws-sdk-go-v2/service/devicefarm/types"

	df "github.com/selimozcann/StoreHunter/internal/devicefarm"
)

type fakeAPI struct {
	pages  []*devicefarm.ListDevicesOutput
	inputs []devicefarm.ListDevicesInput
	err    error
}

func (f *fakeAPI) ListDevices(_ context.Context, in *devicefarm.ListDevicesInput, _ ...func(*devicefarm.Options)) (*devicefarm.ListDevicesOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, *in)
	page := f.pages[0]
	f.pages = f.pages[1:]
	return page, nil
}

func device(name, platform string) types.Device {
	return types.Device{
		Arn:          aws.String("arn:" + name),
		Name:         aws.String(name),
		Model:        aws.String(name + " model"),
		Os:           aws.String("17"),
		Platform:     types.DevicePlatform(platform),
		FormFactor:   types.DeviceFormFactor("PHONE"),
		Availability: types.DeviceAvailability("AVAILABLE"),
	}
}

func TestListDevicesGroupsAndPaginates(t *testing.T) {
	api := &fakeAPI{pages: []*devicefarm.ListDevicesOutput{
		{Devices: []types.Device{device("iPhone 15", "IOS"), device("Pixel 8", "ANDROID")}, NextToken: aws.String("next")},
		{Devices: []types.Device{device("Galaxy S23", "ANDROID"), device("Fire", "OTHER")}},
	}}
	c := df.NewClient(api, "arn:project", nil)

	got, err := c.ListDevices(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got.IOS) != 1 || len(got.Android) != 2 || got.Total() != 3 {
		t.Fatalf("unexpected grouping %+v", got)
	}
	if got.IOS[0].Name != "iPhone 15" || got.Android[1].FormFactor != "PHONE" {
		t.Fatalf("unexpected devices %+v", got)
	}
	if len(api.inputs) != 2 || aws.ToString(api.inputs[1].NextToken) != "next" {
		t.Fatalf("expected a second page request, got %d", len(api.inputs))
	}
	f := api.inputs[0].Filters[0]
	if string(f.Attribute) != "AVAILABILITY" || string(f.Operator) != "EQUALS" || f.Values[0] != "AVAILABLE" {
		t.Fatalf("unexpected filter %+v", f)
	}
	if aws.ToString(api.inputs[0].Arn) != "arn:project" {
		t.Fatalf("expected project arn")
	}
}

func TestListDevicesError(t *testing.T) {
	boom := errors.New("no credentials")
	_, err := df.NewClient(&fakeAPI{err: boom}, "", nil).ListDevices(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped error, got %v", err)
	}
}

func TestRunOnDeviceIsPending(t *testing.T) {
	st := df.NewClient(&fakeAPI{}, "", nil).RunOnDevice(context.Background(), "https://lnkd.in/x", "arn:dev")
	if st.Status != "pending" || st.Device != "arn:dev" || st.Message != df.PendingMessage {
		t.Fatalf("unexpected status %+v", st)
	}
}

func TestSetupGuide(t *testing.T) {
	g := df.SetupGuide()
	for _, key := range []string{"AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY", "AWS_DEVICE_FARM_PROJECT_ARN", "Free Tier"} {
		if !strings.Contains(g, key) {
			t.Fatalf("guide must mention %s", key)
		}
	}
}
