package entities

// FlowOutputSpec is the resolved runtime sink grouping for one logical group.
// Each slot holds at most one resolved spec; merging a second declaration of
// the same kind into a group is a configuration error.
type FlowOutputSpec struct {
	Name           string              `json:"name" yaml:"name"`
	CosmosDbOutput *CosmosDbOutputSpec `json:"cosmosdboutput,omitempty" yaml:"cosmosdboutput,omitempty"`
	EventHubOutput *EventHubOutputSpec `json:"eventhuboutput,omitempty" yaml:"eventhuboutput,omitempty"`
	BlobOutput     *BlobOutputSpec     `json:"bloboutput,omitempty" yaml:"bloboutput,omitempty"`
	HTTPOutput     *HTTPOutputSpec     `json:"httppost,omitempty" yaml:"httppost,omitempty"`
}

// IsEmpty reports whether no member of the group resolved to a spec.
func (s *FlowOutputSpec) IsEmpty() bool {
	return s.CosmosDbOutput == nil && s.EventHubOutput == nil && s.BlobOutput == nil && s.HTTPOutput == nil
}

// CosmosDbOutputSpec targets a CosmosDB collection.
type CosmosDbOutputSpec struct {
	ConnectionStringRef string `json:"connectionStringRef" yaml:"connectionStringRef"`
	Database            string `json:"database" yaml:"database"`
	Collection          string `json:"collection" yaml:"collection"`
}

// EventHubOutputSpec targets an event hub. Metric outputs in cloud mode
// resolve to this spec as well.
type EventHubOutputSpec struct {
	ConnectionStringRef string `json:"connectionStringRef" yaml:"connectionStringRef"`
	CompressionType     string `json:"compressionType" yaml:"compressionType"`
	Format              string `json:"format" yaml:"format"`
}

// BlobOutputSpec targets a time-partitioned folder, either in blob storage
// or on the local filesystem.
type BlobOutputSpec struct {
	CompressionType string           `json:"compressionType" yaml:"compressionType"`
	Format          string           `json:"format" yaml:"format"`
	Groups          BlobOutputGroups `json:"groups" yaml:"groups"`
}

// BlobOutputGroups holds the folder groups of a blob output.
type BlobOutputGroups struct {
	Main BlobOutputMain `json:"main" yaml:"main"`
}

// BlobOutputMain is the main folder group. Folder is a secret reference for
// blob outputs and a plain path template for local ones.
type BlobOutputMain struct {
	Folder string `json:"folder" yaml:"folder"`
}

// HTTPOutputSpec posts events to an HTTP endpoint. Only produced for metric
// outputs in local execution mode.
type HTTPOutputSpec struct {
	Endpoint string            `json:"endpoint" yaml:"endpoint"`
	Filter   string            `json:"filter" yaml:"filter"`
	Headers  map[string]string `json:"headers" yaml:"headers"`
}
