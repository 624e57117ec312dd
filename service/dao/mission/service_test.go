package mission_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"strings"

	model "github.com/gatekit/gatekit/model/mission"
	"github.com/gatekit/gatekit/service/dao/mission"
	"github.com/gatekit/gatekit/service/meta"
)

var definition = `
name: release
description: Gated release pipeline
init:
  service: checkout
  timeout[int](run/vars): 30
checkpoints:
  - name: build
    mode: enforced
    action:
      service: printer
      method: print
      input:
        message: building $service
  - name: deploy-approval
    mode: attestation
    blueprintId: bp-1
    actionType: deploy
    payload:
      service: $service
  - name: deploy-limits
    mode: branch
    watch: deploy-approval
    maxRounds: 2
    reason: too many rounds
`

func TestService_DecodeYAML(t *testing.T) {
	svc := mission.New(meta.New(afs.New(), ""))
	decoded, err := svc.DecodeYAML([]byte(definition))
	assert.NoError(t, err)
	assert.Equal(t, "release", decoded.Name)
	assert.Len(t, decoded.Checkpoints, 3)

	service, ok := decoded.Init.Get("service")
	assert.True(t, ok)
	assert.Equal(t, "checkout", service.Value)

	// Annotated parameter names resolve into typed, located parameters.
	timeout, ok := decoded.Init.Get("timeout")
	assert.True(t, ok)
	assert.Equal(t, "int", timeout.DataType)
	assert.Equal(t, "run", timeout.Location.Kind)
	assert.Equal(t, "vars", timeout.Location.In)
	assert.Equal(t, 30, timeout.Value)

	assert.Equal(t, model.GateBranch, decoded.Checkpoints[2].Mode)
}

func TestService_DecodeYAML_invalid(t *testing.T) {
	svc := mission.New(meta.New(afs.New(), ""))

	_, err := svc.DecodeYAML([]byte("name: broken\ncheckpoints:\n  - name: x\n    mode: unknown\n"))
	assert.Error(t, err)

	// A branch checkpoint must watch an attestation checkpoint.
	noWatch := strings.Replace(definition, "watch: deploy-approval", "watch: build", 1)
	_, err = svc.DecodeYAML([]byte(noWatch))
	assert.Error(t, err)
}

func TestService_LoadCachesByURL(t *testing.T) {
	ctx := context.Background()
	fsService := afs.New()
	baseURL := fmt.Sprintf("mem://localhost/missions-%d", time.Now().UnixNano())
	location := baseURL + "/release.yaml"
	assert.NoError(t, fsService.Upload(ctx, location, file.DefaultFileOsMode, strings.NewReader(definition)))

	svc := mission.New(meta.New(fsService, baseURL))
	loaded, err := svc.Load(ctx, "release")
	assert.NoError(t, err)
	assert.Equal(t, "release", loaded.Name)
	assert.Equal(t, "release.yaml", loaded.Source.URL)

	cached, err := svc.Load(ctx, "release.yaml")
	assert.NoError(t, err)
	assert.Same(t, loaded, cached)

	refreshed, err := svc.Refresh(ctx, "release.yaml")
	assert.NoError(t, err)
	assert.NotSame(t, loaded, refreshed)
}
