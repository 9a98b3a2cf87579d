package helpers

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/abhissng/nhwr-mediator/utils/constant"
	"github.com/abhissng/nhwr-mediator/utils/types"
	"github.com/spf13/viper"
	"go.uber.org/zap/zapcore"
)

// IsEmpty checks if the given value represents an empty or zero value.
func IsEmpty[T any](value T) bool {
	if v, ok := any(value).(types.EmptyCheck); ok {
		return v.IsEmpty()
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() {
		return true
	}

	switch v.Kind() {
	case reflect.Ptr, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return IsEmpty(v.Elem().Interface())
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Map, reflect.Slice:
		return v.IsNil() || v.Len() == 0
	case reflect.Struct:
		if t, ok := v.Interface().(time.Time); ok {
			return t.IsZero()
		}
	}
	return v.IsZero()
}

// FetchHTTPStatusCode returns the HTTP status code associated with the response type
func FetchHTTPStatusCode(response types.ResponseErrorType) int {
	switch response {
	case constant.BadRequest:
		return 400
	case constant.Unauthorized:
		return 401
	case constant.NotFound:
		return 404
	case constant.BadGateway:
		return 502
	case constant.Unavailable:
		return 503
	case constant.TooManyRequests:
		return 429
	}
	return 500
}

// GetEnvironment resolves the deployment mode. MEDIATOR_ENV wins, then NODE_ENV
// for parity with existing deployments, then the generic Environment keys.
func GetEnvironment() string {
	for _, key := range []string{constant.MediatorEnv, constant.NodeEnv, constant.Environment, constant.RunMode} {
		if env := strings.TrimSpace(os.Getenv(key)); env != "" {
			return env
		}
	}
	return viper.GetString(constant.Environment)
}

// GetEnvironmentSlug maps an environment name onto the config directory it selects.
func GetEnvironmentSlug(environment string) string {
	switch strings.ToLower(environment) {
	case "test", "testing":
		return constant.TestMode
	default:
		return constant.ProductionMode
	}
}

// IsTestEnvironment returns true when the process runs in test mode.
func IsTestEnvironment() bool {
	return GetEnvironmentSlug(GetEnvironment()) == constant.TestMode
}

// IsProdEnvironment returns true if Environment is set to "prod" or "production"
func IsProdEnvironment() bool {
	switch strings.ToLower(GetEnvironment()) {
	case "prod", "production":
		return true
	default:
		return false
	}
}

// GetServiceName returns the service name from the app config or the default one.
func GetServiceName() string {
	if name := viper.GetString(constant.Service); name != "" {
		return name
	}
	return constant.DefaultServiceName
}

// BasicAuth returns the value of an Authorization header for the given credentials.
func BasicAuth(username, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(username+":"+password))
}

// ValidateURL checks that requestURL is an absolute request URI.
func ValidateURL(requestURL string) error {
	_, err := url.ParseRequestURI(requestURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	return nil
}

// AppendPath appends segment to the path of baseURL, keeping a single slash between them.
func AppendPath(baseURL, segment string) (*url.URL, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + strings.TrimPrefix(segment, "/")
	return u, nil
}

// Println prints a message with the specified log mode and color
func Println(mode types.LogMode, args ...any) {
	var color string
	switch mode {
	case constant.INFO:
		color = constant.GreenColor
	case constant.WARN:
		color = constant.YellowColor
	case constant.ERROR, constant.FATAL:
		color = constant.RedColor
	case constant.DEBUG:
		color = constant.BlueColor
	default:
		color = constant.ResetColor
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")

	fmt.Println(color + "[" + timestamp + "] [" + mode.String() + "] " + fmt.Sprint(args...) + constant.ResetColor)
	if mode == constant.FATAL {
		os.Exit(1)
	}
}

// TailCallerEncoder keeps the last n path elements of the caller file.
func TailCallerEncoder(n int) zapcore.CallerEncoder {
	if n <= 0 {
		return zapcore.ShortCallerEncoder
	}
	return func(caller zapcore.EntryCaller, enc zapcore.PrimitiveArrayEncoder) {
		path := caller.File

		sep := 0
		i := len(path) - 1
		for ; i >= 0; i-- {
			c := path[i]
			if c == '/' || c == '\\' {
				sep++
				if sep == n {
					break
				}
			}
		}
		tail := path[i+1:]

		if strings.IndexByte(tail, '\\') >= 0 {
			tail = strings.ReplaceAll(tail, "\\", "/")
		}

		var sb strings.Builder
		sb.Grow(len(tail) + 12)
		sb.WriteString(tail)
		sb.WriteByte(':')
		sb.WriteString(strconv.Itoa(caller.Line))

		enc.AppendString(sb.String())
	}
}
