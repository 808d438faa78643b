package workerconfig

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sirupsen/logrus"
)

var _ = Describe("Load", func() {
	var logger *logrus.Logger

	BeforeEach(func() {
		logger = logrus.New()
		logger.SetOutput(GinkgoWriter)

		os.Unsetenv(configPathEnv)
		os.Unsetenv("SLACK_WEBHOOK_URL")
	})

	AfterEach(func() {
		os.Unsetenv(configPathEnv)
		os.Unsetenv("SLACK_WEBHOOK_URL")
	})

	It("returns defaults when no config file is set", func() {
		cfg := Load(logger)

		Expect(cfg.PollInterval).To(Equal(10 * time.Second))
		Expect(cfg.BatchSize).To(Equal(10))
		Expect(cfg.VisibilityTimeout).To(Equal(5 * time.Minute))
		Expect(cfg.SlackWebhookURL).To(BeEmpty())
	})

	It("overlays values from the YAML file", func() {
		path := filepath.Join(GinkgoT().TempDir(), "worker.yaml")
		content := []byte("pollInterval: 2s\nbatchSize: 25\nslackWebhookUrl: https://hooks.example/abc\n")
		Expect(os.WriteFile(path, content, 0o600)).To(Succeed())
		os.Setenv(configPathEnv, path)

		cfg := Load(logger)

		Expect(cfg.PollInterval).To(Equal(2 * time.Second))
		Expect(cfg.BatchSize).To(Equal(25))
		Expect(cfg.VisibilityTimeout).To(Equal(5 * time.Minute))
		Expect(cfg.SlackWebhookURL).To(Equal("https://hooks.example/abc"))
	})

	It("falls back to defaults on a missing file", func() {
		os.Setenv(configPathEnv, "/nonexistent/worker.yaml")

		cfg := Load(logger)
		Expect(cfg.BatchSize).To(Equal(10))
	})

	It("falls back to defaults on malformed YAML", func() {
		path := filepath.Join(GinkgoT().TempDir(), "worker.yaml")
		Expect(os.WriteFile(path, []byte("pollInterval: [broken"), 0o600)).To(Succeed())
		os.Setenv(configPathEnv, path)

		cfg := Load(logger)
		Expect(cfg.PollInterval).To(Equal(10 * time.Second))
	})

	It("lets the environment override the webhook URL", func() {
		path := filepath.Join(GinkgoT().TempDir(), "worker.yaml")
		Expect(os.WriteFile(path, []byte("slackWebhookUrl: https://hooks.example/from-file\n"), 0o600)).To(Succeed())
		os.Setenv(configPathEnv, path)
		os.Setenv("SLACK_WEBHOOK_URL", "https://hooks.example/from-env")

		cfg := Load(logger)
		Expect(cfg.SlackWebhookURL).To(Equal("https://hooks.example/from-env"))
	})
})
