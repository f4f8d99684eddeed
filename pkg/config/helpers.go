package config

import (
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/nikolchaa/resuma/pkg/errors"
)

// SetValue sets a configuration value by key. Keys use the YAML names,
// dotted for nested sections, e.g. "max_concurrent" or "redis.addr".
// Settings keys may be written with or without the "settings." prefix.
func (c *Config) SetValue(key, value string) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}

	switch {
	case field.Type() == reflect.TypeOf(time.Duration(0)):
		d, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration value for %s: %s", key, value)
		}
		field.SetInt(int64(d))
	case field.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean value for %s: %s", key, value)
		}
		field.SetBool(b)
	case field.Kind() == reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid integer value for %s: %s", key, value)
		}
		field.SetInt(int64(n))
	default:
		field.SetString(value)
	}
	return nil
}

// GetValue returns the value stored under key as a string.
func (c *Config) GetValue(key string) (string, error) {
	field, err := c.lookup(key)
	if err != nil {
		return "", err
	}
	return formatValue(field), nil
}

// Keys lists every settable configuration key in sorted order.
func (c *Config) Keys() []string {
	keys := make([]string, 0, len(c.ToMap()))
	for k := range c.ToMap() {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// ToMap flattens the scalar configuration into dotted keys.
// This is useful for displaying the configuration.
func (c *Config) ToMap() map[string]string {
	result := make(map[string]string)
	walk(reflect.ValueOf(c).Elem(), "", func(key string, v reflect.Value) {
		result[key] = formatValue(v)
	})
	return result
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	var found reflect.Value
	walk(reflect.ValueOf(c).Elem(), "", func(k string, v reflect.Value) {
		if k == key || k == "settings."+key {
			found = v
		}
	})
	if !found.IsValid() {
		return reflect.Value{}, fmt.Errorf("%w: %s", errors.ErrUnknownConfigKey, key)
	}
	return found, nil
}

// walk visits every scalar field reachable through nested structs.
func walk(v reflect.Value, prefix string, visit func(string, reflect.Value)) {
	t := v.Type()
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		yamlTag := field.Tag.Get("yaml")
		if yamlTag == "" || yamlTag == "-" {
			continue
		}

		// Handle yaml tags with options (e.g., "data_dir,omitempty")
		key := prefix + strings.Split(yamlTag, ",")[0]
		fv := v.Field(i)

		switch fv.Kind() {
		case reflect.Struct:
			walk(fv, key+".", visit)
		case reflect.String, reflect.Bool, reflect.Int, reflect.Int64:
			visit(key, fv)
		}
	}
}

func formatValue(v reflect.Value) string {
	if v.Type() == reflect.TypeOf(time.Duration(0)) {
		return time.Duration(v.Int()).String()
	}
	switch v.Kind() {
	case reflect.Bool:
		return strconv.FormatBool(v.Bool())
	case reflect.Int, reflect.Int64:
		return strconv.FormatInt(v.Int(), 10)
	default:
		return v.String()
	}
}
