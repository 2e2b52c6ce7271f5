package env

import (
	"github.com/lordralex/rallypoint/api/logger"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

var cache = make(map[string]string)
var locker sync.RWMutex

func init() {
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
}

// Get reads key from viper. When <key>.file is set, the value is read from that
// file instead (docker/k8s secrets) and cached.
func Get(key string) string {
	locker.RLock()
	val, exists := cache[key]
	locker.RUnlock()
	if exists {
		return val
	}

	filename := viper.GetString(key + ".file")
	if filename == "" {
		return viper.GetString(key)
	}
	val, err := readSecret(filename)
	if err != nil {
		logger.Err().Printf("error reading secret: %s", err.Error())
	}
	//update cache with the full value, so we don't constantly read it
	Set(key, val)
	return val
}

func Set(key string, val string) {
	locker.Lock()
	defer locker.Unlock()
	cache[key] = val
}

func GetOr(key string, def string) string {
	res := Get(key)
	if res == "" {
		return def
	}
	return res
}

func GetBool(key string) bool {
	return GetBoolOr(key, false)
}

func GetBoolOr(key string, def bool) bool {
	res := Get(key)
	if res == "" {
		return def
	}
	return cast.ToBool(res)
}

func GetInt(key string) int {
	return cast.ToInt(Get(key))
}

func GetIntOr(key string, def int) int {
	res := Get(key)
	if res == "" {
		return def
	}
	val, err := cast.ToIntE(res)
	if err != nil {
		logger.Err().Printf("%s is not a number, using %d", key, def)
		return def
	}
	return val
}

func GetDurationOr(key string, def time.Duration) time.Duration {
	res := Get(key)
	if res == "" {
		return def
	}
	val, err := cast.ToDurationE(res)
	if err != nil {
		logger.Err().Printf("%s is not a duration, using %s", key, def)
		return def
	}
	return val
}

// GetStringArray splits the value on separator, skipping blank entries.
func GetStringArray(key, separator string) []string {
	val := Get(key)
	if separator == "" {
		separator = ","
	}

	result := make([]string, 0)
	for _, v := range strings.Split(val, separator) {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		result = append(result, v)
	}
	return result
}

func readSecret(file string) (string, error) {
	f, err := os.Open(file)
	if err != nil {
		return "", err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}
