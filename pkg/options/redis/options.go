// Package redis 提供 Redis 连接的命令行选项。
package redis

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/pflag"

	"github.com/kart-io/docqa/pkg/options"
	"github.com/kart-io/docqa/pkg/utils/json"
)

var _ options.IOptions = (*Options)(nil)

// redactedPassword 序列化时替代真实密码的占位符。
const redactedPassword = "[REDACTED]"

// Options Redis 连接配置。
type Options struct {
	Host         string        `json:"host" mapstructure:"host"`
	Port         int           `json:"port" mapstructure:"port"`
	Password     string        `json:"-" mapstructure:"password"` // 不直接参与 JSON 序列化
	Database     int           `json:"database" mapstructure:"database"`
	MaxRetries   int           `json:"max-retries" mapstructure:"max-retries"`
	PoolSize     int           `json:"pool-size" mapstructure:"pool-size"`
	MinIdleConns int           `json:"min-idle-conns" mapstructure:"min-idle-conns"`
	DialTimeout  time.Duration `json:"dial-timeout" mapstructure:"dial-timeout"`
	ReadTimeout  time.Duration `json:"read-timeout" mapstructure:"read-timeout"`
	WriteTimeout time.Duration `json:"write-timeout" mapstructure:"write-timeout"`
	PoolTimeout  time.Duration `json:"pool-timeout" mapstructure:"pool-timeout"`
}

// redactPassword 返回可以安全打印的密码表示。
func (o *Options) redactPassword() string {
	if o.Password == "" {
		return ""
	}
	return redactedPassword
}

// MarshalJSON 实现 json.Marshaler，密码输出为占位符。
// 防止配置被打进日志时泄露真实密码。
func (o *Options) MarshalJSON() ([]byte, error) {
	type shadow struct {
		Host         string        `json:"host"`
		Port         int           `json:"port"`
		Password     string        `json:"password"`
		Database     int           `json:"database"`
		MaxRetries   int           `json:"max-retries"`
		PoolSize     int           `json:"pool-size"`
		MinIdleConns int           `json:"min-idle-conns"`
		DialTimeout  time.Duration `json:"dial-timeout"`
		ReadTimeout  time.Duration `json:"read-timeout"`
		WriteTimeout time.Duration `json:"write-timeout"`
		PoolTimeout  time.Duration `json:"pool-timeout"`
	}

	return json.Marshal(shadow{
		Host:         o.Host,
		Port:         o.Port,
		Password:     o.redactPassword(),
		Database:     o.Database,
		MaxRetries:   o.MaxRetries,
		PoolSize:     o.PoolSize,
		MinIdleConns: o.MinIdleConns,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolTimeout:  o.PoolTimeout,
	})
}

// String 返回脱敏后的字符串表示，可用于日志。
func (o *Options) String() string {
	return fmt.Sprintf("Redis{host=%s, port=%d, password=%s, database=%d}",
		o.Host, o.Port, o.redactPassword(), o.Database)
}

// NewOptions 返回带默认值的 Redis 选项。
func NewOptions() *Options {
	return &Options{
		Host:         "127.0.0.1",
		Port:         6379,
		Password:     "",
		Database:     0,
		MaxRetries:   3,
		PoolSize:     10,
		MinIdleConns: 0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolTimeout:  4 * time.Second,
	}
}

// Validate 校验选项。
func (o *Options) Validate() []error {
	return nil
}

// Complete 补全选项。
func (o *Options) Complete() error {
	// CLI 参数为空时从环境变量读取密码
	if o.Password == "" {
		o.Password = os.Getenv("REDIS_PASSWORD")
	}

	// 密码非空但环境变量为空，说明密码走了 CLI 参数
	if o.Password != "" && os.Getenv("REDIS_PASSWORD") == "" {
		fmt.Fprintf(os.Stderr, "WARNING: Passing Redis password via CLI is insecure. Use REDIS_PASSWORD environment variable instead.\n")
	}

	return nil
}

// AddFlags 注册 Redis 相关的命令行参数。
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Host, options.Join(prefixes...)+"redis.host", o.Host, "Redis host")
	fs.IntVar(&o.Port, options.Join(prefixes...)+"redis.port", o.Port, "Redis port")
	fs.StringVar(&o.Password, options.Join(prefixes...)+"redis.password", o.Password, "Redis password (DEPRECATED: use REDIS_PASSWORD env var instead)")
	fs.IntVar(&o.Database, options.Join(prefixes...)+"redis.database", o.Database, "Redis database")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"redis.max-retries", o.MaxRetries, "Redis max retries")
	fs.IntVar(&o.PoolSize, options.Join(prefixes...)+"redis.pool-size", o.PoolSize, "Redis pool size")
	fs.IntVar(&o.MinIdleConns, options.Join(prefixes...)+"redis.min-idle-conns", o.MinIdleConns, "Redis min idle connections")
	fs.DurationVar(&o.DialTimeout, options.Join(prefixes...)+"redis.dial-timeout", o.DialTimeout, "Redis dial timeout")
	fs.DurationVar(&o.ReadTimeout, options.Join(prefixes...)+"redis.read-timeout", o.ReadTimeout, "Redis read timeout")
	fs.DurationVar(&o.WriteTimeout, options.Join(prefixes...)+"redis.write-timeout", o.WriteTimeout, "Redis write timeout")
	fs.DurationVar(&o.PoolTimeout, options.Join(prefixes...)+"redis.pool-timeout", o.PoolTimeout, "Redis pool timeout")
}
