// Package cos provides common low-level types and utilities for all fgfs packages.
/*
 * Copyright (c) 2025, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	jsoniter "github.com/json-iterator/go"
)

// JSON is used to Marshal/Unmarshal descriptors, properties, and configuration.
var JSON jsoniter.API

func init() {
	jsonConf := jsoniter.Config{
		EscapeHTML:             false,
		ValidateJsonRawMessage: true,
		DisallowUnknownFields:  true,
		SortMapKeys:            true,
	}
	JSON = jsonConf.Froze()
}
