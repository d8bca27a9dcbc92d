package resource

import "testing"

func TestAssetValidate(t *testing.T) {
	tests := []struct {
		name    string
		asset   Asset
		wantErr bool
	}{
		{"file asset", NewFileAsset("/tmp/app.txt"), false},
		{"file asset without path", &FileAsset{}, true},
		{"string asset", NewStringAsset("contents"), false},
		{"string asset without text", &StringAsset{}, true},
		{"remote asset", NewRemoteAsset("https://example.com/a.txt"), false},
		{"remote asset without uri", &RemoteAsset{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.asset.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if tt.wantErr && !IsValidation(err) {
				t.Errorf("Expected a validation error, got: %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestArchiveValidate(t *testing.T) {
	tests := []struct {
		name    string
		archive Archive
		wantErr bool
	}{
		{"file archive", NewFileArchive("/tmp/app.tgz"), false},
		{"file archive without path", &FileArchive{}, true},
		{"remote archive", NewRemoteArchive("https://example.com/a.tgz"), false},
		{"remote archive without uri", &RemoteArchive{}, true},
		{"empty asset archive", NewAssetArchive(nil), false},
		{"asset archive", NewAssetArchive(map[string]any{
			"a": NewStringAsset("text"),
			"b": NewFileArchive("/tmp/inner.tgz"),
		}), false},
		{"asset archive with stray member", NewAssetArchive(map[string]any{
			"a": "not an asset",
		}), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.archive.Validate()
			if tt.wantErr && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}
