// Package loader builds a dataset.LoaderResult by reading an entire
// NetCDF file into memory once at startup, the way the teacher loads a
// whole seismic volume's metadata behind internal/core before serving
// any request. The original implementation's data_loader.rs drives the
// field-by-field extraction order this file follows.
package loader

import (
	"fmt"
	"os"

	"github.com/fhs/go-netcdf/netcdf"

	"github.com/rossby-project/rossby/internal/dataset"
	"github.com/rossby-project/rossby/internal/rerror"
)

// supportedTypes are the NetCDF variable types rossby can load into a
// float32 in-memory array, mirroring data_loader.rs's
// is_supported_variable.
var supportedTypes = map[netcdf.Type]bool{
	netcdf.BYTE:   true,
	netcdf.SHORT:  true,
	netcdf.INT:    true,
	netcdf.FLOAT:  true,
	netcdf.DOUBLE: true,
}

// FromNetCDF opens path and reads every supported variable, its
// dimensions, and its attributes into a dataset.LoaderResult. Dimension
// variables (a variable whose name matches a dimension) become
// coordinate arrays; dimensions without a matching variable get
// synthesized 0..size-1 coordinates.
func FromNetCDF(path string) (dataset.LoaderResult, error) {
	if _, err := os.Stat(path); err != nil {
		return dataset.LoaderResult{}, &rerror.ConfigError{Message: fmt.Sprintf("netcdf file not found: %s", path)}
	}

	ds, err := netcdf.OpenFile(path, netcdf.NOWRITE)
	if err != nil {
		return dataset.LoaderResult{}, &rerror.ConfigError{Message: fmt.Sprintf("opening netcdf file: %s", err)}
	}
	defer ds.Close()

	result := dataset.LoaderResult{
		GlobalAttributes: map[string]dataset.AttrValue{},
		Dimensions:       map[string]dataset.Dimension{},
		Variables:        map[string]dataset.Variable{},
		Data:             map[string][]float32{},
		Coordinates:      map[string][]float64{},
		DimensionAliases: map[string]string{},
		FilePath:         path,
	}

	if err := readGlobalAttributes(ds, &result); err != nil {
		return dataset.LoaderResult{}, err
	}
	dimSizes, err := readDimensions(ds, &result)
	if err != nil {
		return dataset.LoaderResult{}, err
	}
	if err := readVariables(ds, &result, dimSizes); err != nil {
		return dataset.LoaderResult{}, err
	}
	fillMissingCoordinates(&result)

	if len(result.Variables) == 0 {
		return dataset.LoaderResult{}, &rerror.ConfigError{Message: "no supported variables found in netcdf file"}
	}
	return result, nil
}

func readGlobalAttributes(ds netcdf.Dataset, result *dataset.LoaderResult) error {
	group, err := ds.NumAttrs()
	if err != nil {
		return &rerror.ConfigError{Message: "reading global attribute count: " + err.Error()}
	}
	for i := 0; i < group; i++ {
		attr, err := ds.AttrN(i)
		if err != nil {
			return &rerror.ConfigError{Message: "reading global attribute: " + err.Error()}
		}
		value, err := convertAttribute(attr)
		if err != nil {
			return err
		}
		result.GlobalAttributes[attr.Name()] = value
		result.GlobalAttrOrder = append(result.GlobalAttrOrder, attr.Name())
	}
	return nil
}

func readDimensions(ds netcdf.Dataset, result *dataset.LoaderResult) (map[string]uint64, error) {
	nDims, err := ds.NDims()
	if err != nil {
		return nil, &rerror.ConfigError{Message: "reading dimension count: " + err.Error()}
	}
	sizes := map[string]uint64{}
	for i := 0; i < nDims; i++ {
		dim := ds.Dim(i)
		name, err := dim.Name()
		if err != nil {
			return nil, &rerror.ConfigError{Message: "reading dimension name: " + err.Error()}
		}
		size, err := dim.Len()
		if err != nil {
			return nil, &rerror.ConfigError{Message: "reading dimension length: " + err.Error()}
		}
		result.Dimensions[name] = dataset.Dimension{Name: name, Size: int(size)}
		sizes[name] = size
	}
	return sizes, nil
}

func readVariables(ds netcdf.Dataset, result *dataset.LoaderResult, dimSizes map[string]uint64) error {
	nVars, err := ds.NVars()
	if err != nil {
		return &rerror.ConfigError{Message: "reading variable count: " + err.Error()}
	}

	for i := 0; i < nVars; i++ {
		v := ds.VarN(i)
		name, err := v.Name()
		if err != nil {
			return &rerror.ConfigError{Message: "reading variable name: " + err.Error()}
		}

		varType, err := v.Type()
		if err != nil {
			return &rerror.ConfigError{Message: "reading variable type: " + err.Error()}
		}
		if !supportedTypes[varType] {
			continue
		}

		dimIDs, err := v.Dims()
		if err != nil {
			return &rerror.ConfigError{Message: "reading variable dims: " + err.Error()}
		}
		dims := make([]string, len(dimIDs))
		shape := make([]int, len(dimIDs))
		for d, id := range dimIDs {
			dname, err := id.Name()
			if err != nil {
				return &rerror.ConfigError{Message: "reading variable dim name: " + err.Error()}
			}
			dims[d] = dname
			shape[d] = int(dimSizes[dname])
		}

		attrs, order, err := readVariableAttributes(v)
		if err != nil {
			return err
		}

		result.Variables[name] = dataset.Variable{
			Name:       name,
			Dims:       dims,
			Shape:      shape,
			Attributes: attrs,
			AttrOrder:  order,
			DTypeTag:   varType.String(),
		}
		result.VariableOrder = append(result.VariableOrder, name)

		data, err := readVariableData(v, shape)
		if err != nil {
			return err
		}
		result.Data[name] = data

		if _, isDim := dimSizes[name]; isDim && len(dims) == 1 {
			coords := make([]float64, len(data))
			for idx, val := range data {
				coords[idx] = float64(val)
			}
			result.Coordinates[name] = coords
		}
	}
	return nil
}

func readVariableAttributes(v netcdf.Var) (map[string]dataset.AttrValue, []string, error) {
	n, err := v.NumAttrs()
	if err != nil {
		return nil, nil, &rerror.ConfigError{Message: "reading variable attribute count: " + err.Error()}
	}
	attrs := map[string]dataset.AttrValue{}
	var order []string
	for i := 0; i < n; i++ {
		attr, err := v.AttrN(i)
		if err != nil {
			return nil, nil, &rerror.ConfigError{Message: "reading variable attribute: " + err.Error()}
		}
		value, err := convertAttribute(attr)
		if err != nil {
			return nil, nil, err
		}
		attrs[attr.Name()] = value
		order = append(order, attr.Name())
	}
	return attrs, order, nil
}

func readVariableData(v netcdf.Var, shape []int) ([]float32, error) {
	total := 1
	for _, s := range shape {
		total *= s
	}
	data := make([]float32, total)
	if total == 0 {
		return data, nil
	}
	if err := v.ReadFloat32s(data); err != nil {
		return nil, &rerror.ConfigError{Message: "reading variable data: " + err.Error()}
	}
	return data, nil
}

func convertAttribute(attr netcdf.Attr) (dataset.AttrValue, error) {
	attrType, err := attr.Type()
	if err != nil {
		return dataset.AttrValue{}, &rerror.ConfigError{Message: "reading attribute type: " + err.Error()}
	}

	switch attrType {
	case netcdf.CHAR:
		text, err := attr.ReadBytes()
		if err != nil {
			return dataset.AttrValue{}, &rerror.ConfigError{Message: "reading text attribute: " + err.Error()}
		}
		return dataset.AttrValue{Kind: dataset.AttrText, Text: string(text)}, nil
	default:
		values, err := attr.ReadFloat64s()
		if err != nil {
			return dataset.AttrValue{}, &rerror.ConfigError{Message: "reading numeric attribute: " + err.Error()}
		}
		if len(values) == 1 {
			return dataset.AttrValue{Kind: dataset.AttrNumber, Number: values[0]}, nil
		}
		return dataset.AttrValue{Kind: dataset.AttrNumberArray, NumberArray: values}, nil
	}
}

// fillMissingCoordinates synthesizes 0..size-1 coordinates for any
// dimension that never had a matching coordinate variable, the way
// data_loader.rs warns-and-defaults rather than failing outright.
func fillMissingCoordinates(result *dataset.LoaderResult) {
	for name, dim := range result.Dimensions {
		if _, ok := result.Coordinates[name]; ok {
			continue
		}
		coords := make([]float64, dim.Size)
		for i := range coords {
			coords[i] = float64(i)
		}
		result.Coordinates[name] = coords
	}
}
