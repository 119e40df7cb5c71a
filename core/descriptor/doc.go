// Package descriptor loads metadata mapping, rule, filter and processor
// declarations from YAML and turns them into metadata registries.
//
// # File Format
//
//	processors:
//	  - id: exif
//	    type: exiftool
//	    default: true
//	mappings:
//	  - id: iptc
//	    blob: file:content
//	    ignorePrefix: true
//	    metadata:
//	      - name: EXIF:ImageDescription
//	        field: dc:description
//	filters:
//	  - id: pictures
//	    types: [Picture]
//	rules:
//	  - id: picture-rule
//	    priority: 10
//	    filters: [pictures]
//	    mappings: [iptc]
//
// Omitted mapping blobs default to "file:content" and omitted rule
// enabled flags default to true.
//
// # Validation
//
// Validate reports duplicate ids, mappings referencing unknown processors and
// incomplete metadata entries as errors. Rules referencing unknown mappings or
// filters only produce warnings since those references are skipped at runtime.
//
// # Usage
//
//	f, err := descriptor.LoadFile("descriptors.yaml")
//	regs, err := descriptor.Build(f, map[string]descriptor.ProcessorFactory{
//	    "exiftool": exiftool.Factory(cfg, logger),
//	})
package descriptor
