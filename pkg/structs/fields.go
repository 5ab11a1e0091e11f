package structs

import (
	"github.com/oleiade/reflections"
	"github.com/pkg/errors"
)

// Project returns the given fields of obj, keyed by field name.
// Fields promoted from embedded structs are supported.
func Project(obj any, fields ...string) (map[string]any, error) {
	projection := make(map[string]any, len(fields))
	for _, name := range fields {
		ok, err := reflections.HasField(obj, name)
		if err != nil {
			return nil, errors.Wrapf(err, "could not inspect field %s", name)
		}
		if !ok {
			return nil, errors.Errorf("unknown field %s", name)
		}

		v, err := reflections.GetField(obj, name)
		if err != nil {
			return nil, errors.Wrapf(err, "could not read field %s", name)
		}
		projection[name] = v
	}
	return projection, nil
}
