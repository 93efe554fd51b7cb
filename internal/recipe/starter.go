package recipe

// Starter is the recipe written by `quickprep init`.
const Starter = `# quickprep recipe: steps run top to bottom.
# Ops: standardize_column_names, handle_missing, convert_types, detect_outliers,
# clean_text, remove_duplicates, scale, filter, infer_temporal, rename.
name: starter
steps:
  - op: standardize_column_names
  - op: remove_duplicates
  - op: handle_missing
    method: median          # drop | mean | median
  - op: infer_temporal      # integer columns that look like dates
  - op: detect_outliers
    method: iqr             # iqr | zscore
    threshold: 1.5
  # - op: convert_types
  #   types: {zip_code: text, amount: float}
  # - op: filter
  #   where: {region: north}
  # - op: rename
  #   rename: {amt: amount}
  # - op: scale
  #   method: normalize     # standardize | normalize
  #   columns: [amount]
`
