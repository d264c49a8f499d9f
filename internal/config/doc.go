// Package config loads the goliq configuration from config.yaml.
//
// Config fields:
//   - Server.Addr       listen address of the HTTP API (default ":8080")
//   - Server.RateLimit  requests per second per client, 0 disables (default 10)
//   - Server.Burst      token bucket size per client (default 20)
//   - Model.Classifier  random-forest JSON artifact
//   - Model.Scaler      feature scaler JSON artifact
//   - Model.Watch       reload the artifacts when they change
//   - Logging.Level     debug | info | warn | error (default info)
//   - Logging.Format    text | json (default text)
//   - Metrics.Namespace Prometheus namespace (default "goliq")
//   - Report.Author     PDF report author
//   - Batch.Workers     concurrent rows in `goliq batch` (default 4)
//
// Load(path) applies defaults before unmarshalling, then GOLIQ_* environment
// overrides (GOLIQ_ADDR, GOLIQ_MODEL, GOLIQ_SCALER, GOLIQ_LOG_LEVEL, ...),
// then validates. LoadDotEnv feeds a .env file into the environment first.
package config
