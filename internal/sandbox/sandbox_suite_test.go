package sandbox_test

import (
	"net/http/httptest"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/mesh-intelligence/dustnbones/internal/httpx"
	"github.com/mesh-intelligence/dustnbones/internal/sandbox"
)

func TestSandbox(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "sandbox")
}

var (
	server *httptest.Server
	client *httpx.Client
)

// Each It gets a freshly seeded backend.
var _ = BeforeEach(func() {
	server = httptest.NewServer(sandbox.New(sandbox.Seeded()))
	DeferCleanup(server.Close)

	var err error
	client, err = httpx.NewClient(server.URL + sandbox.APIPrefix)
	Expect(err).NotTo(HaveOccurred())
})
